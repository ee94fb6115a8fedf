package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, schoolID string, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, schoolID, id string) (int64, error)
}

type subjectClassRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
}

// SubjectService manages taught courses.
type SubjectService struct {
	subjects  subjectRepository
	classes   subjectClassRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(subjects subjectRepository, classes subjectClassRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, classes: classes, validator: validate, logger: logger}
}

// List returns subjects in the caller's school. Teachers see only subjects
// assigned to them.
func (s *SubjectService) List(ctx context.Context, auth *models.AuthContext, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	if auth.User.Role == models.RoleTeacher {
		filter.TeacherID = auth.User.ID
	}

	subjects, total, err := s.subjects.List(ctx, auth.SchoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one subject.
func (s *SubjectService) Get(ctx context.Context, schoolID, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	return subject, nil
}

// Create registers a new subject attached to an existing class.
func (s *SubjectService) Create(ctx context.Context, schoolID string, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if err := s.checkClass(ctx, schoolID, req.ClassID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		SchoolID:  schoolID,
		Name:      req.Name,
		Code:      req.Code,
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update replaces a subject's mutable fields.
func (s *SubjectService) Update(ctx context.Context, schoolID, id string, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.subjects.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if err := s.checkClass(ctx, schoolID, req.ClassID); err != nil {
		return nil, err
	}

	subject.Name = req.Name
	subject.Code = req.Code
	subject.ClassID = req.ClassID
	subject.TeacherID = req.TeacherID

	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, schoolID, id string) error {
	rows, err := s.subjects.Delete(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

func (s *SubjectService) checkClass(ctx context.Context, schoolID, classID string) error {
	if _, err := s.classes.FindByID(ctx, schoolID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
	}
	return nil
}
