package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type fakeImportStudents struct {
	existing map[string]bool
	created  []*models.Student
}

func (f *fakeImportStudents) ExistsByAdmissionNumber(_ context.Context, admissionNumber string, _ string) (bool, error) {
	return f.existing[admissionNumber], nil
}

func (f *fakeImportStudents) Create(_ context.Context, student *models.Student) error {
	student.ID = "stu-" + student.AdmissionNumber
	f.created = append(f.created, student)
	return nil
}

type fakeImportClasses struct {
	byName map[string]*models.ClassDetail
}

func (f *fakeImportClasses) FindByName(_ context.Context, _, name string) (*models.ClassDetail, error) {
	if class, ok := f.byName[name]; ok {
		return class, nil
	}
	return nil, sql.ErrNoRows
}

func newImportFixture() (*ImportService, *fakeImportStudents) {
	students := &fakeImportStudents{existing: map[string]bool{}}
	classes := &fakeImportClasses{byName: map[string]*models.ClassDetail{
		"JSS 1A": {Class: models.Class{ID: "cls-1", SchoolID: "school-1"}},
	}}
	return NewImportService(students, classes, nil, nil), students
}

func TestImportStudentsMixedRows(t *testing.T) {
	svc, students := newImportFixture()

	file := strings.Join([]string{
		"admission_number,full_name,gender,class_name",
		"A001,Ada Okafor,female,JSS 1A",
		"A002,Tunde Bello,male,JSS 1A",
		",No Admission,male,JSS 1A",
		"A003,Chiamaka Eze,female,",
	}, "\n")

	summary, err := svc.ImportStudents(context.Background(), "school-1", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Created)
	require.Len(t, summary.Errors, 1)
	// Data rows are numbered the way a spreadsheet shows them: the header is
	// row 1, so the first data row is row 2.
	assert.Contains(t, summary.Errors[0], "row 4")
	require.Len(t, students.created, 3)
	assert.Nil(t, students.created[2].ClassID)
}

func TestImportStudentsDetectsInFileDuplicates(t *testing.T) {
	svc, _ := newImportFixture()

	file := strings.Join([]string{
		"admission_number,full_name",
		"A001,Ada Okafor",
		"A001,Ada Again",
	}, "\n")

	summary, err := svc.ImportStudents(context.Background(), "school-1", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "row 3")
	assert.Contains(t, summary.Errors[0], "duplicates row 2")
}

func TestImportStudentsRejectsTakenAdmissionNumbers(t *testing.T) {
	svc, students := newImportFixture()
	students.existing["A001"] = true

	file := "admission_number,full_name\nA001,Ada Okafor\n"
	summary, err := svc.ImportStudents(context.Background(), "school-1", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "already in use")
}

func TestImportStudentsReportsUnknownClass(t *testing.T) {
	svc, _ := newImportFixture()

	file := "admission_number,full_name,class_name\nA001,Ada Okafor,Nowhere\n"
	summary, err := svc.ImportStudents(context.Background(), "school-1", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], `class "Nowhere" not found`)
}

func TestImportStudentsRequiresColumns(t *testing.T) {
	svc, _ := newImportFixture()

	_, err := svc.ImportStudents(context.Background(), "school-1", strings.NewReader("full_name\nAda\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ImportStudents(context.Background(), "school-1", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
