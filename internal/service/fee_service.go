package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/pkg/config"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/export"
)

type feeRepository interface {
	UpsertStructure(ctx context.Context, structure *models.FeeStructure) error
	FindStructure(ctx context.Context, schoolID, classLevel, term, academicYear string) (*models.FeeStructure, error)
	ListStructures(ctx context.Context, schoolID string) ([]models.FeeStructure, error)
	CreatePayment(ctx context.Context, payment *models.FeePayment) error
	FindPaymentByID(ctx context.Context, schoolID, id string) (*models.FeePayment, error)
	ListPayments(ctx context.Context, schoolID, studentID string) ([]models.FeePayment, error)
	SumPayments(ctx context.Context, schoolID, studentID, term, academicYear string) (float64, error)
}

type feeStudentRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.StudentDetail, error)
	List(ctx context.Context, schoolID string, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

type feeClassRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
}

type feeSchoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

// FeeService owns fee structures, payments and derived balances. When no
// structure exists for a student's class level the configured default total
// applies, so balances are always computable.
type FeeService struct {
	fees      feeRepository
	students  feeStudentRepository
	classes   feeClassRepository
	schools   feeSchoolRepository
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	config    config.FeesConfig
}

// NewFeeService constructs a FeeService instance.
func NewFeeService(fees feeRepository, students feeStudentRepository, classes feeClassRepository, schools feeSchoolRepository, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger, cfg config.FeesConfig) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &FeeService{fees: fees, students: students, classes: classes, schools: schools, pdf: pdf, validator: validate, logger: logger, config: cfg}
}

// UpsertStructure creates or replaces the fee structure for one class level
// and term. Posting the same key again overwrites the amounts in place. The
// stored total is always recomputed from the components.
func (s *FeeService) UpsertStructure(ctx context.Context, schoolID string, req models.FeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}

	structure := &models.FeeStructure{
		SchoolID:     schoolID,
		ClassLevel:   req.ClassLevel,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Tuition:      req.Tuition,
		Development:  req.Development,
		Examination:  req.Examination,
		Sports:       req.Sports,
	}
	structure.Total = structure.Sum()

	if err := s.fees.UpsertStructure(ctx, structure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save fee structure")
	}
	return structure, nil
}

// ListStructures returns all fee structures for the school.
func (s *FeeService) ListStructures(ctx context.Context, schoolID string) ([]models.FeeStructure, error) {
	structures, err := s.fees.ListStructures(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee structures")
	}
	return structures, nil
}

// RecordPayment appends a payment for a student and generates the receipt
// number. Payments are never mutated or deleted afterwards.
func (s *FeeService) RecordPayment(ctx context.Context, auth *models.AuthContext, req models.RecordPaymentRequest) (*models.FeePayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	if _, err := s.students.FindByID(ctx, auth.SchoolID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	payment := &models.FeePayment{
		SchoolID:      auth.SchoolID,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		Method:        req.Method,
		Term:          req.Term,
		AcademicYear:  req.AcademicYear,
		ReceiptNumber: generateReceiptNumber(),
		RecordedBy:    auth.User.ID,
	}
	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	return payment, nil
}

// ListPayments returns the payment history for one student.
func (s *FeeService) ListPayments(ctx context.Context, auth *models.AuthContext, studentID string) ([]models.FeePayment, error) {
	if _, err := s.visibleStudent(ctx, auth, studentID); err != nil {
		return nil, err
	}
	payments, err := s.fees.ListPayments(ctx, auth.SchoolID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// Balance computes a student's position for one term: structure total minus
// the sum of payments. The raw balance may go negative on overpayment; only
// the display field is clamped.
func (s *FeeService) Balance(ctx context.Context, auth *models.AuthContext, studentID, term, academicYear string) (*models.FeeBalance, error) {
	student, err := s.visibleStudent(ctx, auth, studentID)
	if err != nil {
		return nil, err
	}
	return s.balanceFor(ctx, auth.SchoolID, student, term, academicYear)
}

// Balances computes the position of every student in the school for one
// term. Admin-only.
func (s *FeeService) Balances(ctx context.Context, schoolID, term, academicYear string) ([]models.FeeBalance, error) {
	var balances []models.FeeBalance
	filter := models.StudentFilter{Page: 1, PageSize: 100}
	for {
		students, total, err := s.students.List(ctx, schoolID, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		for i := range students {
			balance, err := s.balanceFor(ctx, schoolID, &students[i], term, academicYear)
			if err != nil {
				return nil, err
			}
			balances = append(balances, *balance)
		}
		if len(balances) >= total || len(students) == 0 {
			break
		}
		filter.Page++
	}
	return balances, nil
}

// Receipt renders a payment receipt as a PDF, including the student's
// balance after that payment's term.
func (s *FeeService) Receipt(ctx context.Context, auth *models.AuthContext, paymentID string) ([]byte, error) {
	payment, err := s.fees.FindPaymentByID(ctx, auth.SchoolID, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch payment")
	}

	student, err := s.visibleStudent(ctx, auth, payment.StudentID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balanceFor(ctx, auth.SchoolID, student, payment.Term, payment.AcademicYear)
	if err != nil {
		return nil, err
	}

	schoolName := ""
	if school, err := s.schools.FindByID(ctx, auth.SchoolID); err == nil {
		schoolName = school.Name
	}
	className := ""
	if student.ClassName != nil {
		className = *student.ClassName
	}

	data, err := s.pdf.RenderReceipt(export.Receipt{
		SchoolName:    schoolName,
		ReceiptNumber: payment.ReceiptNumber,
		StudentName:   student.FullName,
		ClassName:     className,
		Term:          payment.Term,
		AcademicYear:  payment.AcademicYear,
		Amount:        payment.Amount,
		Method:        payment.Method,
		PaidAt:        payment.PaidAt.Format("2006-01-02"),
		Balance:       balance.Balance,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, nil
}

func (s *FeeService) balanceFor(ctx context.Context, schoolID string, student *models.StudentDetail, term, academicYear string) (*models.FeeBalance, error) {
	classLevel := ""
	if student.ClassID != nil {
		class, err := s.classes.FindByID(ctx, schoolID, *student.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
		}
		if err == nil {
			classLevel = class.Level
		}
	}

	totalFees := s.config.DefaultStructureTotal
	if classLevel != "" {
		structure, err := s.fees.FindStructure(ctx, schoolID, classLevel, term, academicYear)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee structure")
		}
		if err == nil {
			totalFees = structure.Total
		}
	}

	paid, err := s.fees.SumPayments(ctx, schoolID, student.ID, term, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum payments")
	}

	balance := &models.FeeBalance{
		StudentID:    student.ID,
		StudentName:  student.FullName,
		ClassLevel:   classLevel,
		Term:         term,
		AcademicYear: academicYear,
		TotalFees:    totalFees,
		TotalPaid:    paid,
		Balance:      totalFees - paid,
	}
	balance.Clamp()
	return balance, nil
}

// visibleStudent fetches a student and rejects callers outside their scope.
// Parents may only see their own children; scope failures look identical to
// a missing student.
func (s *FeeService) visibleStudent(ctx context.Context, auth *models.AuthContext, studentID string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, auth.SchoolID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if auth.User.Role == models.RoleParent {
		if student.ParentID == nil || *student.ParentID != auth.User.ID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
	}
	return student, nil
}

func generateReceiptNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("RCP-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
