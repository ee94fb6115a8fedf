package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/models"
)

func TestAttendanceUpsertRemarksSameDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO attendance .+ ON CONFLICT \\(school_id, student_id, date\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("att-1", now, now))

	record := &models.AttendanceRecord{
		SchoolID:  "sch1",
		StudentID: "stu1",
		ClassID:   "cls1",
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceLate,
		MarkedBy:  "t1",
	}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "att-1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"total", "present", "absent", "late", "excused"}).
		AddRow(20, 15, 2, 2, 1)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WithArgs("sch1", "stu1").
		WillReturnRows(rows)

	counts, err := repo.Counts(context.Background(), "sch1", "stu1")
	require.NoError(t, err)
	assert.Equal(t, 20, counts.Total)
	assert.Equal(t, 15, counts.Present)
	assert.Equal(t, 2, counts.Late)
	assert.NoError(t, mock.ExpectationsWereMet())
}
