package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/OsasDev/qirllo-api/internal/models"
)

// FeeRepository manages persistence for fee structures and payments.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeStructureColumns = "id, school_id, class_level, term, academic_year, tuition, development, examination, sports, total, created_at, updated_at"
const feePaymentColumns = "id, school_id, student_id, amount, method, term, academic_year, receipt_number, recorded_by, paid_at"

// UpsertStructure atomically inserts or updates a fee structure by its
// natural key (class level, term, academic year) within the school.
func (r *FeeRepository) UpsertStructure(ctx context.Context, structure *models.FeeStructure) error {
	if structure.ID == "" {
		structure.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO fee_structures (id, school_id, class_level, term, academic_year, tuition, development, examination, sports, total, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
        ON CONFLICT (school_id, class_level, term, academic_year)
        DO UPDATE SET tuition = EXCLUDED.tuition, development = EXCLUDED.development, examination = EXCLUDED.examination,
            sports = EXCLUDED.sports, total = EXCLUDED.total, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		structure.ID, structure.SchoolID, structure.ClassLevel, structure.Term, structure.AcademicYear,
		structure.Tuition, structure.Development, structure.Examination, structure.Sports, structure.Total, now,
	)
	if err := row.Scan(&structure.ID, &structure.CreatedAt, &structure.UpdatedAt); err != nil {
		return fmt.Errorf("upsert fee structure: %w", err)
	}
	return nil
}

// FindStructure looks up the fee structure for a class level, term and year.
func (r *FeeRepository) FindStructure(ctx context.Context, schoolID, classLevel, term, academicYear string) (*models.FeeStructure, error) {
	query := fmt.Sprintf(`SELECT %s FROM fee_structures WHERE school_id = $1 AND class_level = $2 AND term = $3 AND academic_year = $4 LIMIT 1`, feeStructureColumns)
	var structure models.FeeStructure
	if err := r.db.GetContext(ctx, &structure, query, schoolID, classLevel, term, academicYear); err != nil {
		return nil, err
	}
	return &structure, nil
}

// ListStructures returns all fee structures of one school.
func (r *FeeRepository) ListStructures(ctx context.Context, schoolID string) ([]models.FeeStructure, error) {
	query := fmt.Sprintf(`SELECT %s FROM fee_structures WHERE school_id = $1 ORDER BY academic_year DESC, term ASC, class_level ASC`, feeStructureColumns)
	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, schoolID); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}

// CreatePayment appends a payment record. Payments are never updated or
// deleted.
func (r *FeeRepository) CreatePayment(ctx context.Context, payment *models.FeePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}
	const query = `INSERT INTO fee_payments (id, school_id, student_id, amount, method, term, academic_year, receipt_number, recorded_by, paid_at)
        VALUES (:id, :school_id, :student_id, :amount, :method, :term, :academic_year, :receipt_number, :recorded_by, :paid_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create fee payment: %w", err)
	}
	return nil
}

// FindPaymentByID fetches a payment of one school by ID.
func (r *FeeRepository) FindPaymentByID(ctx context.Context, schoolID, id string) (*models.FeePayment, error) {
	query := fmt.Sprintf(`SELECT %s FROM fee_payments WHERE id = $1 AND school_id = $2 LIMIT 1`, feePaymentColumns)
	var payment models.FeePayment
	if err := r.db.GetContext(ctx, &payment, query, id, schoolID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns payments of one school, optionally for one student.
func (r *FeeRepository) ListPayments(ctx context.Context, schoolID, studentID string) ([]models.FeePayment, error) {
	query := fmt.Sprintf(`SELECT %s FROM fee_payments WHERE school_id = $1`, feePaymentColumns)
	args := []interface{}{schoolID}
	if studentID != "" {
		query += " AND student_id = $2"
		args = append(args, studentID)
	}
	query += " ORDER BY paid_at DESC"
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}
	return payments, nil
}

// SumPayments totals the payments recorded for a student and term.
func (r *FeeRepository) SumPayments(ctx context.Context, schoolID, studentID, term, academicYear string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM fee_payments
        WHERE school_id = $1 AND student_id = $2 AND term = $3 AND academic_year = $4`
	var sum float64
	if err := r.db.GetContext(ctx, &sum, query, schoolID, studentID, term, academicYear); err != nil {
		return 0, fmt.Errorf("sum fee payments: %w", err)
	}
	return sum, nil
}
