package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/models"
)

func TestFeeSumPayments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM fee_payments")).
		WithArgs("sch1", "stu1", "First Term", "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(35000.0))

	sum, err := repo.SumPayments(context.Background(), "sch1", "stu1", "First Term", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 35000.0, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeUpsertStructure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO fee_structures .+ ON CONFLICT \\(school_id, class_level, term, academic_year\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("fs1", now, now))

	structure := &models.FeeStructure{
		SchoolID:     "sch1",
		ClassLevel:   "JSS1",
		Term:         "First Term",
		AcademicYear: "2025/2026",
		Tuition:      30000,
		Development:  10000,
		Examination:  5000,
		Sports:       5000,
	}
	structure.Total = structure.Sum()
	err := repo.UpsertStructure(context.Background(), structure)
	require.NoError(t, err)
	assert.Equal(t, "fs1", structure.ID)
	assert.Equal(t, 50000.0, structure.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeCreatePayment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO fee_payments").WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.FeePayment{
		SchoolID:      "sch1",
		StudentID:     "stu1",
		Amount:        20000,
		Method:        "cash",
		Term:          "First Term",
		AcademicYear:  "2025/2026",
		ReceiptNumber: "RCP-001",
		RecordedBy:    "adm1",
	}
	err := repo.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
	assert.False(t, payment.PaidAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
