package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/pkg/config"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type fakeFees struct {
	structures map[string]*models.FeeStructure
	payments   []*models.FeePayment
}

func newFakeFees() *fakeFees {
	return &fakeFees{structures: map[string]*models.FeeStructure{}}
}

func structureKey(schoolID, classLevel, term, academicYear string) string {
	return schoolID + "|" + classLevel + "|" + term + "|" + academicYear
}

func (f *fakeFees) UpsertStructure(_ context.Context, structure *models.FeeStructure) error {
	key := structureKey(structure.SchoolID, structure.ClassLevel, structure.Term, structure.AcademicYear)
	if existing, ok := f.structures[key]; ok {
		structure.ID = existing.ID
	} else {
		structure.ID = "fs-" + key
	}
	clone := *structure
	f.structures[key] = &clone
	return nil
}

func (f *fakeFees) FindStructure(_ context.Context, schoolID, classLevel, term, academicYear string) (*models.FeeStructure, error) {
	if structure, ok := f.structures[structureKey(schoolID, classLevel, term, academicYear)]; ok {
		return structure, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFees) ListStructures(_ context.Context, _ string) ([]models.FeeStructure, error) {
	return nil, nil
}

func (f *fakeFees) CreatePayment(_ context.Context, payment *models.FeePayment) error {
	payment.ID = "pay-" + payment.ReceiptNumber
	clone := *payment
	f.payments = append(f.payments, &clone)
	return nil
}

func (f *fakeFees) FindPaymentByID(_ context.Context, schoolID, id string) (*models.FeePayment, error) {
	for _, payment := range f.payments {
		if payment.ID == id && payment.SchoolID == schoolID {
			return payment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFees) ListPayments(_ context.Context, schoolID, studentID string) ([]models.FeePayment, error) {
	var out []models.FeePayment
	for _, payment := range f.payments {
		if payment.SchoolID == schoolID && payment.StudentID == studentID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (f *fakeFees) SumPayments(_ context.Context, schoolID, studentID, term, academicYear string) (float64, error) {
	var sum float64
	for _, payment := range f.payments {
		if payment.SchoolID == schoolID && payment.StudentID == studentID && payment.Term == term && payment.AcademicYear == academicYear {
			sum += payment.Amount
		}
	}
	return sum, nil
}

type fakeFeeStudents struct {
	byID map[string]*models.StudentDetail
}

func (f *fakeFeeStudents) FindByID(_ context.Context, schoolID, id string) (*models.StudentDetail, error) {
	student, ok := f.byID[id]
	if !ok || student.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (f *fakeFeeStudents) List(_ context.Context, schoolID string, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	if filter.Page > 1 {
		return nil, len(f.byID), nil
	}
	var out []models.StudentDetail
	for _, student := range f.byID {
		if student.SchoolID == schoolID {
			out = append(out, *student)
		}
	}
	return out, len(out), nil
}

type fakeFeeSchools struct{}

func (f *fakeFeeSchools) FindByID(_ context.Context, id string) (*models.School, error) {
	return &models.School{ID: id, Name: "Test School"}, nil
}

func newFeeFixture() (*FeeService, *fakeFees) {
	fees := newFakeFees()
	students := &fakeFeeStudents{byID: map[string]*models.StudentDetail{
		"stu-1": {Student: models.Student{ID: "stu-1", SchoolID: "school-1", FullName: "Ada Okafor", ClassID: strPtr("cls-1"), ParentID: strPtr("parent-1")}},
	}}
	classes := &fakeClasses{byID: map[string]*models.ClassDetail{
		"cls-1": {Class: models.Class{ID: "cls-1", SchoolID: "school-1", Level: "JSS1"}},
	}}
	svc := NewFeeService(fees, students, classes, &fakeFeeSchools{}, nil, nil, nil, config.FeesConfig{DefaultStructureTotal: 50000})
	return svc, fees
}

func postStructure(t *testing.T, svc *FeeService) {
	t.Helper()
	_, err := svc.UpsertStructure(context.Background(), "school-1", models.FeeStructureRequest{
		ClassLevel: "JSS1", Term: "first", AcademicYear: "2025/2026",
		Tuition: 30000, Development: 10000, Examination: 7000, Sports: 3000,
	})
	require.NoError(t, err)
}

func pay(t *testing.T, svc *FeeService, amount float64) *models.FeePayment {
	t.Helper()
	payment, err := svc.RecordPayment(context.Background(), adminCtx(), models.RecordPaymentRequest{
		StudentID: "stu-1", Amount: amount, Method: "cash",
		Term: "first", AcademicYear: "2025/2026",
	})
	require.NoError(t, err)
	return payment
}

func TestUpsertStructureRecomputesTotal(t *testing.T) {
	svc, fees := newFeeFixture()

	structure, err := svc.UpsertStructure(context.Background(), "school-1", models.FeeStructureRequest{
		ClassLevel: "JSS1", Term: "first", AcademicYear: "2025/2026",
		Tuition: 30000, Development: 10000, Examination: 7000, Sports: 3000,
	})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, structure.Total)

	// Same key again replaces in place.
	again, err := svc.UpsertStructure(context.Background(), "school-1", models.FeeStructureRequest{
		ClassLevel: "JSS1", Term: "first", AcademicYear: "2025/2026",
		Tuition: 40000,
	})
	require.NoError(t, err)
	assert.Equal(t, structure.ID, again.ID)
	assert.Equal(t, 40000.0, again.Total)
	assert.Len(t, fees.structures, 1)
}

func TestBalanceSubtractsPayments(t *testing.T) {
	svc, _ := newFeeFixture()
	postStructure(t, svc)
	pay(t, svc, 20000)
	pay(t, svc, 15000)

	balance, err := svc.Balance(context.Background(), adminCtx(), "stu-1", "first", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, balance.TotalFees)
	assert.Equal(t, 35000.0, balance.TotalPaid)
	assert.Equal(t, 15000.0, balance.Balance)
	assert.Equal(t, 15000.0, balance.Outstanding)
}

func TestOverpaymentGoesNegativeButDisplayClamps(t *testing.T) {
	svc, _ := newFeeFixture()
	postStructure(t, svc)
	pay(t, svc, 55000)

	balance, err := svc.Balance(context.Background(), adminCtx(), "stu-1", "first", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, -5000.0, balance.Balance)
	assert.Equal(t, 0.0, balance.Outstanding)
}

func TestBalanceFallsBackToConfiguredDefault(t *testing.T) {
	svc, _ := newFeeFixture()
	// No structure posted for the student's class level.
	pay(t, svc, 10000)

	balance, err := svc.Balance(context.Background(), adminCtx(), "stu-1", "first", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, balance.TotalFees)
	assert.Equal(t, 40000.0, balance.Balance)
}

func TestRecordPaymentGeneratesReceiptNumber(t *testing.T) {
	svc, _ := newFeeFixture()

	payment := pay(t, svc, 1000)
	assert.True(t, strings.HasPrefix(payment.ReceiptNumber, "RCP-"), payment.ReceiptNumber)

	second := pay(t, svc, 1000)
	assert.NotEqual(t, payment.ReceiptNumber, second.ReceiptNumber)
}

func TestParentOnlySeesOwnChildsBalance(t *testing.T) {
	svc, _ := newFeeFixture()
	postStructure(t, svc)

	_, err := svc.Balance(context.Background(), parentCtx("parent-1"), "stu-1", "first", "2025/2026")
	assert.NoError(t, err)

	_, err = svc.Balance(context.Background(), parentCtx("parent-2"), "stu-1", "first", "2025/2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReceiptRendersPDF(t *testing.T) {
	svc, _ := newFeeFixture()
	postStructure(t, svc)
	payment := pay(t, svc, 20000)

	data, err := svc.Receipt(context.Background(), adminCtx(), payment.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
