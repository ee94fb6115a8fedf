package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/mailer"
)

type userRepository interface {
	FindInSchool(ctx context.Context, schoolID, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, schoolID string, filter models.UserFilter) ([]models.User, int, error)
	Delete(ctx context.Context, schoolID, id string) (int64, error)
}

type userSchoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

type mailMetrics interface {
	ObserveMailDelivery(ok bool)
}

// UserService manages teacher and parent accounts within a school.
type UserService struct {
	users     userRepository
	schools   userSchoolRepository
	mailer    mailer.Mailer
	metrics   mailMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance. metrics may be nil.
func NewUserService(users userRepository, schools userSchoolRepository, mail mailer.Mailer, metrics mailMetrics, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, schools: schools, mailer: mail, metrics: metrics, validator: validate, logger: logger}
}

// Invite creates a teacher or parent account with a generated temporary
// password and emails the credentials. Mail delivery is best-effort and never
// rolls back the created account.
func (s *UserService) Invite(ctx context.Context, schoolID string, req models.InviteUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invite payload")
	}
	if req.Role != models.RoleTeacher && req.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be TEACHER or PARENT")
	}

	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email already registered")
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		SchoolID:           schoolID,
		Email:              req.Email,
		PasswordHash:       string(hash),
		FullName:           req.FullName,
		Role:               req.Role,
		MustChangePassword: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.sendInvitation(user, tempPassword)
	return user, nil
}

// Get returns a single user within the caller's school.
func (s *UserService) Get(ctx context.Context, schoolID, id string) (*models.User, error) {
	user, err := s.users.FindInSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// List returns users in the caller's school.
func (s *UserService) List(ctx context.Context, schoolID string, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	users, total, err := s.users.List(ctx, schoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Delete removes a user from the caller's school. Self-deletion is rejected
// so a school can never lose its last admin by accident.
func (s *UserService) Delete(ctx context.Context, schoolID, callerID, id string) error {
	if id == callerID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	rows, err := s.users.Delete(ctx, schoolID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return nil
}

func (s *UserService) sendInvitation(user *models.User, tempPassword string) {
	school, err := s.schools.FindByID(context.Background(), user.SchoolID)
	schoolName := "your school"
	if err == nil {
		schoolName = school.Name
	}

	msg := mailer.Message{
		ToName:    user.FullName,
		ToAddress: user.Email,
		Subject:   fmt.Sprintf("You have been invited to %s", schoolName),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nAn account has been created for you at %s.\n\nEmail: %s\nTemporary password: %s\n\nYou will be asked to change this password on first login.\n",
			user.FullName, schoolName, user.Email, tempPassword,
		),
	}

	go func() {
		err := s.mailer.Send(context.Background(), msg)
		if s.metrics != nil {
			s.metrics.ObserveMailDelivery(err == nil)
		}
		if err != nil {
			s.logger.Warn("failed to send invitation email",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}()
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizePages(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 || *pageSize > 100 {
		*pageSize = 20
	}
}
