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

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, school_id, student_id, class_id, date, status, marked_by, created_at, updated_at"

// List returns attendance records of one school matching the filter.
func (r *AttendanceRepository) List(ctx context.Context, schoolID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"school_id = $1"}
	args := []interface{}{schoolID}

	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.TaughtBy != "" {
		where = append(where, fmt.Sprintf("class_id IN (SELECT id FROM classes WHERE teacher_id = $%d)", len(args)+1))
		args = append(args, filter.TaughtBy)
	}
	if filter.ParentOf != "" {
		where = append(where, fmt.Sprintf("student_id IN (SELECT id FROM students WHERE parent_id = $%d)", len(args)+1))
		args = append(args, filter.ParentOf)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}

	query := fmt.Sprintf("SELECT %s FROM attendance WHERE %s ORDER BY date DESC LIMIT %d OFFSET %d", attendanceColumns, whereClause, size, (page-1)*size)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// Upsert atomically inserts or updates a mark by its natural key
// (student, date) within the school, keeping the existing row id when
// re-marking the same day.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO attendance (id, school_id, student_id, class_id, date, status, marked_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (school_id, student_id, date)
        DO UPDATE SET class_id = EXCLUDED.class_id, status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		record.ID, record.SchoolID, record.StudentID, record.ClassID,
		record.Date, record.Status, record.MarkedBy, now,
	)
	if err := row.Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Counts aggregates per-status totals for one student of one school.
func (r *AttendanceRepository) Counts(ctx context.Context, schoolID, studentID string) (*models.AttendanceCounts, error) {
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = 'present') AS present,
        COUNT(*) FILTER (WHERE status = 'absent') AS absent,
        COUNT(*) FILTER (WHERE status = 'late') AS late,
        COUNT(*) FILTER (WHERE status = 'excused') AS excused
        FROM attendance WHERE school_id = $1 AND student_id = $2`
	var counts models.AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, schoolID, studentID); err != nil {
		return nil, fmt.Errorf("attendance counts: %w", err)
	}
	return &counts, nil
}
