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

type fakeGrades struct {
	byID     map[string]*models.GradeDetail
	byKey    map[string]*models.GradeDetail
	listed   models.GradeFilter
	upserted int
}

func newFakeGrades() *fakeGrades {
	return &fakeGrades{byID: map[string]*models.GradeDetail{}, byKey: map[string]*models.GradeDetail{}}
}

func gradeKey(g *models.Grade) string {
	return g.SchoolID + "|" + g.StudentID + "|" + g.SubjectID + "|" + g.Term + "|" + g.AcademicYear
}

func (f *fakeGrades) List(_ context.Context, _ string, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	f.listed = filter
	return nil, 0, nil
}

func (f *fakeGrades) FindByID(_ context.Context, schoolID, id string) (*models.GradeDetail, error) {
	grade, ok := f.byID[id]
	if !ok || grade.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return grade, nil
}

func (f *fakeGrades) Upsert(_ context.Context, grade *models.Grade) error {
	f.upserted++
	key := gradeKey(grade)
	if existing, ok := f.byKey[key]; ok {
		grade.ID = existing.ID
		existing.Grade = *grade
		return nil
	}
	grade.ID = "grade-" + key
	detail := &models.GradeDetail{Grade: *grade}
	f.byKey[key] = detail
	f.byID[grade.ID] = detail
	return nil
}

func (f *fakeGrades) UpdateStatus(_ context.Context, schoolID, id string, status models.GradeStatus) (int64, error) {
	grade, ok := f.byID[id]
	if !ok || grade.SchoolID != schoolID {
		return 0, nil
	}
	grade.Status = status
	return 1, nil
}

type fakeSubjects struct {
	byID map[string]*models.Subject
}

func (f *fakeSubjects) FindByID(_ context.Context, schoolID, id string) (*models.Subject, error) {
	subject, ok := f.byID[id]
	if !ok || subject.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

type fakeStudents struct {
	byID map[string]*models.StudentDetail
}

func (f *fakeStudents) FindByID(_ context.Context, schoolID, id string) (*models.StudentDetail, error) {
	student, ok := f.byID[id]
	if !ok || student.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func strPtr(s string) *string { return &s }

func adminCtx() *models.AuthContext {
	return &models.AuthContext{
		User:     &models.User{ID: "admin-1", SchoolID: "school-1", Role: models.RoleAdmin},
		SchoolID: "school-1",
	}
}

func teacherCtx(id string) *models.AuthContext {
	return &models.AuthContext{
		User:     &models.User{ID: id, SchoolID: "school-1", Role: models.RoleTeacher},
		SchoolID: "school-1",
	}
}

func parentCtx(id string) *models.AuthContext {
	return &models.AuthContext{
		User:     &models.User{ID: id, SchoolID: "school-1", Role: models.RoleParent},
		SchoolID: "school-1",
	}
}

func newGradeFixture() (*GradeService, *fakeGrades) {
	grades := newFakeGrades()
	subjects := &fakeSubjects{byID: map[string]*models.Subject{
		"sub-1": {ID: "sub-1", SchoolID: "school-1", Name: "Mathematics", TeacherID: strPtr("teacher-1")},
	}}
	students := &fakeStudents{byID: map[string]*models.StudentDetail{
		"stu-1": {Student: models.Student{ID: "stu-1", SchoolID: "school-1", ParentID: strPtr("parent-1")}},
	}}
	return NewGradeService(grades, subjects, students, nil, nil), grades
}

func TestRecordDerivesTotalAndLetter(t *testing.T) {
	svc, _ := newGradeFixture()

	cases := []struct {
		ca, exam float64
		letter   string
	}{
		{30, 40, "A"},
		{29, 40, "B"},
		{10, 30, "E"},
		{10, 29, "F"},
	}
	for _, tc := range cases {
		grade, err := svc.Record(context.Background(), teacherCtx("teacher-1"), models.RecordGradeRequest{
			StudentID:    "stu-1",
			SubjectID:    "sub-1",
			CAScore:      tc.ca,
			ExamScore:    tc.exam,
			Term:         "first",
			AcademicYear: "2025/2026",
		})
		require.NoError(t, err)
		assert.Equal(t, tc.ca+tc.exam, grade.TotalScore)
		assert.Equal(t, tc.letter, grade.LetterGrade)
		assert.Equal(t, models.GradeStatusDraft, grade.Status)
	}
}

func TestRecordSameKeyUpdatesInPlace(t *testing.T) {
	svc, grades := newGradeFixture()
	auth := teacherCtx("teacher-1")
	req := models.RecordGradeRequest{
		StudentID: "stu-1", SubjectID: "sub-1",
		CAScore: 20, ExamScore: 30,
		Term: "first", AcademicYear: "2025/2026",
	}

	first, err := svc.Record(context.Background(), auth, req)
	require.NoError(t, err)

	req.CAScore, req.ExamScore = 35, 40
	second, err := svc.Record(context.Background(), auth, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 75.0, second.TotalScore)
	assert.Equal(t, "A", second.LetterGrade)
	assert.Len(t, grades.byID, 1)
}

func TestRecordRejectsUnassignedTeacher(t *testing.T) {
	svc, _ := newGradeFixture()

	_, err := svc.Record(context.Background(), teacherCtx("teacher-2"), models.RecordGradeRequest{
		StudentID: "stu-1", SubjectID: "sub-1",
		CAScore: 10, ExamScore: 10,
		Term: "first", AcademicYear: "2025/2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBulkRecordCollectsErrorsWithoutAborting(t *testing.T) {
	svc, _ := newGradeFixture()

	summary, err := svc.BulkRecord(context.Background(), teacherCtx("teacher-1"), models.BulkGradeRequest{
		Grades: []models.RecordGradeRequest{
			{StudentID: "stu-1", SubjectID: "sub-1", CAScore: 30, ExamScore: 45, Term: "first", AcademicYear: "2025/2026"},
			{StudentID: "missing", SubjectID: "sub-1", CAScore: 30, ExamScore: 45, Term: "first", AcademicYear: "2025/2026"},
			{StudentID: "stu-1", SubjectID: "sub-1", CAScore: 20, ExamScore: 25, Term: "second", AcademicYear: "2025/2026"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "entry 2")
}

func TestGradeWorkflow(t *testing.T) {
	svc, _ := newGradeFixture()
	teacher := teacherCtx("teacher-1")

	grade, err := svc.Record(context.Background(), teacher, models.RecordGradeRequest{
		StudentID: "stu-1", SubjectID: "sub-1",
		CAScore: 30, ExamScore: 45,
		Term: "first", AcademicYear: "2025/2026",
	})
	require.NoError(t, err)

	// Approving a draft must fail: the workflow goes draft -> submitted -> approved.
	_, err = svc.Approve(context.Background(), adminCtx(), grade.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	submitted, err := svc.Submit(context.Background(), teacher, grade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeStatusSubmitted, submitted.Status)

	approved, err := svc.Approve(context.Background(), adminCtx(), grade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeStatusApproved, approved.Status)
}

func TestParentListIsLockedToApprovedOwnChildren(t *testing.T) {
	svc, grades := newGradeFixture()

	draft := models.GradeStatusDraft
	_, _, err := svc.List(context.Background(), parentCtx("parent-1"), models.GradeFilter{Status: &draft})
	require.NoError(t, err)

	require.NotNil(t, grades.listed.Status)
	assert.Equal(t, models.GradeStatusApproved, *grades.listed.Status)
	assert.Equal(t, "parent-1", grades.listed.ParentOf)
}

func TestParentGetHidesUnapprovedAndOthersChildren(t *testing.T) {
	svc, grades := newGradeFixture()
	teacher := teacherCtx("teacher-1")

	grade, err := svc.Record(context.Background(), teacher, models.RecordGradeRequest{
		StudentID: "stu-1", SubjectID: "sub-1",
		CAScore: 30, ExamScore: 45,
		Term: "first", AcademicYear: "2025/2026",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), parentCtx("parent-1"), grade.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	grades.byID[grade.ID].Status = models.GradeStatusApproved

	_, err = svc.Get(context.Background(), parentCtx("parent-1"), grade.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), parentCtx("parent-2"), grade.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
