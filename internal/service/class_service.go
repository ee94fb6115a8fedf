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

type classRepository interface {
	List(ctx context.Context, schoolID string, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, schoolID, id string) (int64, error)
	HasDependents(ctx context.Context, schoolID, id string) (bool, error)
}

// ClassService manages homeroom groups.
type ClassService struct {
	classes   classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(classes classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, validator: validate, logger: logger}
}

// List returns classes in the caller's school. Teachers see only classes
// assigned to them.
func (s *ClassService) List(ctx context.Context, auth *models.AuthContext, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	if auth.User.Role == models.RoleTeacher {
		filter.TeacherID = auth.User.ID
	}

	classes, total, err := s.classes.List(ctx, auth.SchoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, schoolID, id string) (*models.ClassDetail, error) {
	class, err := s.classes.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
	}
	return class, nil
}

// Create registers a new class.
func (s *ClassService) Create(ctx context.Context, schoolID string, req models.ClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		SchoolID:     schoolID,
		Name:         req.Name,
		Level:        req.Level,
		Section:      req.Section,
		TeacherID:    req.TeacherID,
		AcademicYear: req.AcademicYear,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return s.classes.FindByID(ctx, schoolID, class.ID)
}

// Update replaces a class's mutable fields.
func (s *ClassService) Update(ctx context.Context, schoolID, id string, req models.ClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	existing, err := s.classes.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
	}

	class := existing.Class
	class.Name = req.Name
	class.Level = req.Level
	class.Section = req.Section
	class.TeacherID = req.TeacherID
	class.AcademicYear = req.AcademicYear

	if err := s.classes.Update(ctx, &class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return s.classes.FindByID(ctx, schoolID, id)
}

// Delete removes a class. A class that still has students or subjects
// attached cannot be deleted; they must be reassigned first.
func (s *ClassService) Delete(ctx context.Context, schoolID, id string) error {
	hasDependents, err := s.classes.HasDependents(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class dependents")
	}
	if hasDependents {
		return appErrors.Clone(appErrors.ErrConflict, "class still has students or subjects attached")
	}

	rows, err := s.classes.Delete(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return nil
}
