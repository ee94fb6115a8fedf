package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/export"
)

type studentRepository interface {
	List(ctx context.Context, schoolID string, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.StudentDetail, error)
	ExistsByAdmissionNumber(ctx context.Context, admissionNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, schoolID, id string) (int64, error)
}

type studentClassRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
}

// StudentService manages pupil records. Reads are scoped by the caller's
// role: teachers see students in their classes, parents see their own
// children.
type StudentService struct {
	students  studentRepository
	classes   studentClassRepository
	exporter  *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(students studentRepository, classes studentClassRepository, exporter *export.CSVExporter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = export.NewCSVExporter()
	}
	return &StudentService{students: students, classes: classes, exporter: exporter, validator: validate, logger: logger}
}

// List returns students visible to the caller.
func (s *StudentService) List(ctx context.Context, auth *models.AuthContext, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	scopeStudentFilter(&filter, auth)

	students, total, err := s.students.List(ctx, auth.SchoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one student if the caller is allowed to see them. A student
// outside the caller's scope is reported as not found, the same as a student
// that does not exist.
func (s *StudentService) Get(ctx context.Context, auth *models.AuthContext, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	visible, err := s.visibleTo(ctx, auth, student)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, schoolID string, req models.StudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	taken, err := s.students.ExistsByAdmissionNumber(ctx, req.AdmissionNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate admission number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admission number already in use")
	}

	student := &models.Student{
		SchoolID:        schoolID,
		AdmissionNumber: req.AdmissionNumber,
		FullName:        req.FullName,
		Gender:          req.Gender,
		ClassID:         req.ClassID,
		ParentID:        req.ParentID,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return s.students.FindByID(ctx, schoolID, student.ID)
}

// Update replaces a student's mutable fields.
func (s *StudentService) Update(ctx context.Context, schoolID, id string, req models.StudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.students.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	taken, err := s.students.ExistsByAdmissionNumber(ctx, req.AdmissionNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate admission number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admission number already in use")
	}

	student := existing.Student
	student.AdmissionNumber = req.AdmissionNumber
	student.FullName = req.FullName
	student.Gender = req.Gender
	student.ClassID = req.ClassID
	student.ParentID = req.ParentID

	if err := s.students.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.students.FindByID(ctx, schoolID, id)
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, schoolID, id string) error {
	rows, err := s.students.Delete(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

// ExportRoster renders the students visible to the caller as a CSV file.
func (s *StudentService) ExportRoster(ctx context.Context, auth *models.AuthContext, filter models.StudentFilter) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = 100
	scopeStudentFilter(&filter, auth)

	dataset := export.Dataset{
		Headers: []string{"#", "Admission Number", "Full Name", "Gender", "Class"},
	}
	for i := 0; ; i++ {
		filter.Page = i + 1
		students, total, err := s.students.List(ctx, auth.SchoolID, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		for j, st := range students {
			className := ""
			if st.ClassName != nil {
				className = *st.ClassName
			}
			dataset.Rows = append(dataset.Rows, []string{
				strconv.Itoa(i*filter.PageSize + j + 1),
				st.AdmissionNumber,
				st.FullName,
				st.Gender,
				className,
			})
		}
		if len(dataset.Rows) >= total || len(students) == 0 {
			break
		}
	}

	data, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return data, nil
}

func (s *StudentService) visibleTo(ctx context.Context, auth *models.AuthContext, student *models.StudentDetail) (bool, error) {
	switch auth.User.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleParent:
		return student.ParentID != nil && *student.ParentID == auth.User.ID, nil
	case models.RoleTeacher:
		if student.ClassID == nil {
			return false, nil
		}
		class, err := s.classes.FindByID(ctx, auth.SchoolID, *student.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
		}
		return class.TeacherID != nil && *class.TeacherID == auth.User.ID, nil
	}
	return false, nil
}

// scopeStudentFilter narrows a list filter to what the caller's role may see.
func scopeStudentFilter(filter *models.StudentFilter, auth *models.AuthContext) {
	switch auth.User.Role {
	case models.RoleTeacher:
		filter.TaughtBy = auth.User.ID
	case models.RoleParent:
		filter.ParentID = auth.User.ID
	}
}
