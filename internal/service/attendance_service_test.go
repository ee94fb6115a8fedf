package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type fakeAttendance struct {
	byKey  map[string]*models.AttendanceRecord
	counts map[string]*models.AttendanceCounts
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{byKey: map[string]*models.AttendanceRecord{}, counts: map[string]*models.AttendanceCounts{}}
}

func (f *fakeAttendance) List(_ context.Context, _ string, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

func (f *fakeAttendance) Upsert(_ context.Context, record *models.AttendanceRecord) error {
	key := record.SchoolID + "|" + record.StudentID + "|" + record.Date.Format("2006-01-02")
	if existing, ok := f.byKey[key]; ok {
		record.ID = existing.ID
		*existing = *record
		return nil
	}
	record.ID = "att-" + key
	clone := *record
	f.byKey[key] = &clone
	return nil
}

func (f *fakeAttendance) Counts(_ context.Context, _, studentID string) (*models.AttendanceCounts, error) {
	if counts, ok := f.counts[studentID]; ok {
		return counts, nil
	}
	return &models.AttendanceCounts{}, nil
}

type fakeClasses struct {
	byID map[string]*models.ClassDetail
}

func (f *fakeClasses) FindByID(_ context.Context, schoolID, id string) (*models.ClassDetail, error) {
	class, ok := f.byID[id]
	if !ok || class.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func newAttendanceFixture() (*AttendanceService, *fakeAttendance) {
	attendance := newFakeAttendance()
	classes := &fakeClasses{byID: map[string]*models.ClassDetail{
		"cls-1": {Class: models.Class{ID: "cls-1", SchoolID: "school-1", TeacherID: strPtr("teacher-1")}},
	}}
	students := &fakeStudents{byID: map[string]*models.StudentDetail{
		"stu-1": {Student: models.Student{ID: "stu-1", SchoolID: "school-1", ClassID: strPtr("cls-1"), ParentID: strPtr("parent-1")}},
	}}
	return NewAttendanceService(attendance, classes, students, nil, nil), attendance
}

func TestMarkSameDayReplacesInPlace(t *testing.T) {
	svc, attendance := newAttendanceFixture()
	auth := teacherCtx("teacher-1")
	req := models.MarkAttendanceRequest{
		StudentID: "stu-1", ClassID: "cls-1",
		Date: "2026-01-12", Status: models.AttendanceAbsent,
	}

	first, err := svc.Mark(context.Background(), auth, req)
	require.NoError(t, err)

	req.Status = models.AttendancePresent
	second, err := svc.Mark(context.Background(), auth, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, attendance.byKey, 1)
	assert.Equal(t, models.AttendancePresent, second.Status)
}

func TestMarkRejectsTeacherOfAnotherClass(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), teacherCtx("teacher-2"), models.MarkAttendanceRequest{
		StudentID: "stu-1", ClassID: "cls-1",
		Date: "2026-01-12", Status: models.AttendancePresent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkRejectsStudentOutsideClass(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), adminCtx(), models.MarkAttendanceRequest{
		StudentID: "stu-1", ClassID: "cls-other",
		Date: "2026-01-12", Status: models.AttendancePresent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBulkMarkCollectsErrors(t *testing.T) {
	svc, _ := newAttendanceFixture()

	summary, err := svc.BulkMark(context.Background(), teacherCtx("teacher-1"), models.BulkAttendanceRequest{
		Records: []models.MarkAttendanceRequest{
			{StudentID: "stu-1", ClassID: "cls-1", Date: "2026-01-12", Status: models.AttendancePresent},
			{StudentID: "missing", ClassID: "cls-1", Date: "2026-01-12", Status: models.AttendancePresent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "entry 2")
}

func TestAttendanceRateRoundsToOneDecimal(t *testing.T) {
	cases := []struct {
		counts models.AttendanceCounts
		want   float64
	}{
		{models.AttendanceCounts{Total: 0}, 0},
		{models.AttendanceCounts{Total: 10, Present: 8, Late: 1}, 90},
		{models.AttendanceCounts{Total: 3, Present: 2}, 66.7},
		{models.AttendanceCounts{Total: 7, Present: 4, Late: 1}, 71.4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AttendanceRate(&tc.counts))
	}
}

func TestSummaryScopesToParent(t *testing.T) {
	svc, attendance := newAttendanceFixture()
	attendance.counts["stu-1"] = &models.AttendanceCounts{Total: 4, Present: 3, Late: 1}

	summary, err := svc.Summary(context.Background(), parentCtx("parent-1"), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Rate)

	_, err = svc.Summary(context.Background(), parentCtx("parent-2"), "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
