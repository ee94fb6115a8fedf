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

// GradeRepository manages persistence for grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeSelect = `SELECT g.id, g.school_id, g.student_id, g.subject_id, g.ca_score, g.exam_score, g.total_score, g.letter_grade,
        g.term, g.academic_year, g.status, g.recorded_by, g.created_at, g.updated_at,
        s.full_name AS student_name, sub.name AS subject_name
        FROM grades g
        JOIN students s ON s.id = g.student_id
        JOIN subjects sub ON sub.id = g.subject_id`

// List returns grades of one school matching the filter.
func (r *GradeRepository) List(ctx context.Context, schoolID string, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	where := []string{"g.school_id = $1"}
	args := []interface{}{schoolID}

	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		where = append(where, fmt.Sprintf("g.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Term != "" {
		where = append(where, fmt.Sprintf("g.term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.AcademicYear != "" {
		where = append(where, fmt.Sprintf("g.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("g.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.TaughtBy != "" {
		where = append(where, fmt.Sprintf("g.subject_id IN (SELECT id FROM subjects WHERE teacher_id = $%d)", len(args)+1))
		args = append(args, filter.TaughtBy)
	}
	if filter.ParentOf != "" {
		where = append(where, fmt.Sprintf("g.student_id IN (SELECT id FROM students WHERE parent_id = $%d)", len(args)+1))
		args = append(args, filter.ParentOf)
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

	query := fmt.Sprintf("%s WHERE %s ORDER BY g.updated_at DESC LIMIT %d OFFSET %d", gradeSelect, whereClause, size, (page-1)*size)
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM grades g WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}

// FindByID fetches a grade of one school by ID.
func (r *GradeRepository) FindByID(ctx context.Context, schoolID, id string) (*models.GradeDetail, error) {
	query := gradeSelect + ` WHERE g.id = $1 AND g.school_id = $2 LIMIT 1`
	var detail models.GradeDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Upsert atomically inserts or updates a grade by its natural key
// (student, subject, term, academic year) within the school. An existing row
// keeps its id; the candidate id is only used on insert. This closes the
// read-then-write race on concurrent submissions.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO grades (id, school_id, student_id, subject_id, ca_score, exam_score, total_score, letter_grade,
            term, academic_year, status, recorded_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
        ON CONFLICT (school_id, student_id, subject_id, term, academic_year)
        DO UPDATE SET ca_score = EXCLUDED.ca_score, exam_score = EXCLUDED.exam_score, total_score = EXCLUDED.total_score,
            letter_grade = EXCLUDED.letter_grade, status = EXCLUDED.status, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		grade.ID, grade.SchoolID, grade.StudentID, grade.SubjectID,
		grade.CAScore, grade.ExamScore, grade.TotalScore, grade.LetterGrade,
		grade.Term, grade.AcademicYear, grade.Status, grade.RecordedBy, now,
	)
	if err := row.Scan(&grade.ID, &grade.CreatedAt, &grade.UpdatedAt); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// UpdateStatus transitions a grade's workflow status. Returns rows affected
// so callers can map zero to NotFound.
func (r *GradeRepository) UpdateStatus(ctx context.Context, schoolID, id string, status models.GradeStatus) (int64, error) {
	const query = `UPDATE grades SET status = $3, updated_at = $4 WHERE id = $1 AND school_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, schoolID, status, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update grade status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update grade status rows affected: %w", err)
	}
	return affected, nil
}

// CountByStatus counts grades of one school in the given status.
func (r *GradeRepository) CountByStatus(ctx context.Context, schoolID string, status models.GradeStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM grades WHERE school_id = $1 AND status = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID, status); err != nil {
		return 0, fmt.Errorf("count grades by status: %w", err)
	}
	return total, nil
}
