package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/OsasDev/qirllo-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentSelect = `SELECT s.id, s.school_id, s.admission_number, s.full_name, s.gender, s.class_id, s.parent_id, s.created_at, s.updated_at,
        c.name AS class_name
        FROM students s LEFT JOIN classes c ON c.id = s.class_id`

// List returns students of one school matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, schoolID string, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	where := []string{"s.school_id = $1"}
	args := []interface{}{schoolID}

	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.ParentID != "" {
		where = append(where, fmt.Sprintf("s.parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.TaughtBy != "" {
		where = append(where, fmt.Sprintf("s.class_id IN (SELECT id FROM classes WHERE teacher_id = $%d)", len(args)+1))
		args = append(args, filter.TaughtBy)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.admission_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY s.full_name ASC LIMIT %d OFFSET %d", studentSelect, whereClause, size, (page-1)*size)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students s WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student of one school by ID.
func (r *StudentRepository) FindByID(ctx context.Context, schoolID, id string) (*models.StudentDetail, error) {
	query := studentSelect + ` WHERE s.id = $1 AND s.school_id = $2 LIMIT 1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByAdmissionNumber resolves a student by admission number within a school.
func (r *StudentRepository) FindByAdmissionNumber(ctx context.Context, schoolID, admissionNumber string) (*models.StudentDetail, error) {
	query := studentSelect + ` WHERE s.admission_number = $1 AND s.school_id = $2 LIMIT 1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, admissionNumber, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByAdmissionNumber checks whether an admission number is taken,
// optionally excluding one student ID.
func (r *StudentRepository) ExistsByAdmissionNumber(ctx context.Context, admissionNumber string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE admission_number = $1"
	args := []interface{}{admissionNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admission number: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, school_id, admission_number, full_name, gender, class_id, parent_id, created_at, updated_at)
        VALUES (:id, :school_id, :admission_number, :full_name, :gender, :class_id, :parent_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. The school id is part of the match so
// a write can never cross tenants.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET admission_number = :admission_number, full_name = :full_name, gender = :gender,
        class_id = :class_id, parent_id = :parent_id, updated_at = :updated_at
        WHERE id = :id AND school_id = :school_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete hard-deletes a student of one school.
func (r *StudentRepository) Delete(ctx context.Context, schoolID, id string) (int64, error) {
	const query = `DELETE FROM students WHERE id = $1 AND school_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, schoolID)
	if err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete student rows affected: %w", err)
	}
	return affected, nil
}

// Count counts all students of one school.
func (r *StudentRepository) Count(ctx context.Context, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE school_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// CountByParent counts the students linked to one parent.
func (r *StudentRepository) CountByParent(ctx context.Context, schoolID, parentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE school_id = $1 AND parent_id = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID, parentID); err != nil {
		return 0, fmt.Errorf("count students by parent: %w", err)
	}
	return total, nil
}
