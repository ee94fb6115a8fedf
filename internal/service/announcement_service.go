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

type announcementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	ListForAudiences(ctx context.Context, schoolID string, audiences []models.Audience) ([]models.Announcement, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Announcement, error)
	Delete(ctx context.Context, schoolID, id string) (int64, error)
}

// AnnouncementService owns school-wide notices. Reads are filtered by what
// the caller's role is allowed to see.
type AnnouncementService struct {
	announcements announcementRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService instance.
func NewAnnouncementService(announcements announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{announcements: announcements, validator: validate, logger: logger}
}

// Publish creates a new announcement.
func (s *AnnouncementService) Publish(ctx context.Context, auth *models.AuthContext, req models.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if !req.Audience.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown audience")
	}
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	announcement := &models.Announcement{
		SchoolID: auth.SchoolID,
		Title:    req.Title,
		Content:  req.Content,
		Audience: req.Audience,
		Priority: priority,
		AuthorID: auth.User.ID,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

// List returns announcements addressed to the caller's role.
func (s *AnnouncementService) List(ctx context.Context, auth *models.AuthContext) ([]models.Announcement, error) {
	announcements, err := s.announcements.ListForAudiences(ctx, auth.SchoolID, models.AudiencesFor(auth.User.Role))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// Get returns one announcement if it is addressed to the caller's role. An
// announcement outside the caller's audience looks like a missing one.
func (s *AnnouncementService) Get(ctx context.Context, auth *models.AuthContext, id string) (*models.Announcement, error) {
	announcement, err := s.announcements.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch announcement")
	}

	for _, audience := range models.AudiencesFor(auth.User.Role) {
		if announcement.Audience == audience {
			return announcement, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, schoolID, id string) error {
	rows, err := s.announcements.Delete(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}
	return nil
}
