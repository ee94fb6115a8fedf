package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/OsasDev/qirllo-api/internal/models"
)

// ClassRepository manages persistence for class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// student_count is recomputed on every read; it is never stored.
const classSelect = `SELECT c.id, c.school_id, c.name, c.level, c.section, c.teacher_id, c.academic_year, c.created_at, c.updated_at,
        (SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count
        FROM classes c`

// List returns classes of one school matching the filter.
func (r *ClassRepository) List(ctx context.Context, schoolID string, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	where := []string{"c.school_id = $1"}
	args := []interface{}{schoolID}

	if filter.TeacherID != "" {
		where = append(where, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.AcademicYear != "" {
		where = append(where, fmt.Sprintf("c.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
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

	query := fmt.Sprintf("%s WHERE %s ORDER BY c.level ASC, c.name ASC LIMIT %d OFFSET %d", classSelect, whereClause, size, (page-1)*size)
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM classes c WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID fetches a class of one school by ID.
func (r *ClassRepository) FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error) {
	query := classSelect + ` WHERE c.id = $1 AND c.school_id = $2 LIMIT 1`
	var detail models.ClassDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByName resolves a class by exact name within a school. Used by the bulk
// importer to map class names onto ids.
func (r *ClassRepository) FindByName(ctx context.Context, schoolID, name string) (*models.ClassDetail, error) {
	query := classSelect + ` WHERE LOWER(c.name) = LOWER($1) AND c.school_id = $2 LIMIT 1`
	var detail models.ClassDetail
	if err := r.db.GetContext(ctx, &detail, query, name, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, school_id, name, level, section, teacher_id, academic_year, created_at, updated_at)
        VALUES (:id, :school_id, :name, :level, :section, :teacher_id, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies an existing class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, level = :level, section = :section, teacher_id = :teacher_id,
        academic_year = :academic_year, updated_at = :updated_at
        WHERE id = :id AND school_id = :school_id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete hard-deletes a class of one school.
func (r *ClassRepository) Delete(ctx context.Context, schoolID, id string) (int64, error) {
	const query = `DELETE FROM classes WHERE id = $1 AND school_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, schoolID)
	if err != nil {
		return 0, fmt.Errorf("delete class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete class rows affected: %w", err)
	}
	return affected, nil
}

// HasDependents reports whether students or subjects still reference a class.
// Deletes are rejected while dependents exist.
func (r *ClassRepository) HasDependents(ctx context.Context, schoolID, id string) (bool, error) {
	const query = `SELECT (SELECT COUNT(*) FROM students WHERE class_id = $1 AND school_id = $2)
        + (SELECT COUNT(*) FROM subjects WHERE class_id = $1 AND school_id = $2)`
	var dependents int
	if err := r.db.GetContext(ctx, &dependents, query, id, schoolID); err != nil {
		return false, fmt.Errorf("count class dependents: %w", err)
	}
	return dependents > 0, nil
}

// Count counts all classes of one school.
func (r *ClassRepository) Count(ctx context.Context, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE school_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}
