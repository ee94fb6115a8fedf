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

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, schoolID, id string) (*models.MessageDetail, error)
	ListForUser(ctx context.Context, schoolID, userID string, box models.MessageBox) ([]models.MessageDetail, error)
	MarkRead(ctx context.Context, schoolID, id, recipientID string) (int64, error)
	Delete(ctx context.Context, schoolID, id, userID string) (int64, error)
}

type messageUserRepository interface {
	FindInSchool(ctx context.Context, schoolID, id string) (*models.User, error)
}

// MessageService owns direct messaging between users of one school.
type MessageService struct {
	messages  messageRepository
	users     messageUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService instance.
func NewMessageService(messages messageRepository, users messageUserRepository, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{messages: messages, users: users, validator: validate, logger: logger}
}

// Send delivers a message to another user of the same school. A recipient
// from another school is indistinguishable from one that does not exist.
func (s *MessageService) Send(ctx context.Context, auth *models.AuthContext, req models.SendMessageRequest) (*models.MessageDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if req.RecipientID == auth.User.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}

	if _, err := s.users.FindInSchool(ctx, auth.SchoolID, req.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch recipient")
	}

	message := &models.Message{
		SchoolID:    auth.SchoolID,
		SenderID:    auth.User.ID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Content:     req.Content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return s.messages.FindByID(ctx, auth.SchoolID, message.ID)
}

// List returns the caller's inbox or sent box.
func (s *MessageService) List(ctx context.Context, auth *models.AuthContext, box models.MessageBox) ([]models.MessageDetail, error) {
	if box != models.MessageBoxInbox && box != models.MessageBoxSent {
		box = models.MessageBoxInbox
	}
	messages, err := s.messages.ListForUser(ctx, auth.SchoolID, auth.User.ID, box)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Get returns one message the caller participates in.
func (s *MessageService) Get(ctx context.Context, auth *models.AuthContext, id string) (*models.MessageDetail, error) {
	message, err := s.messages.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch message")
	}
	if message.SenderID != auth.User.ID && message.RecipientID != auth.User.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return message, nil
}

// MarkRead marks a message as read. Only the recipient may do this; the
// check is enforced in the update itself.
func (s *MessageService) MarkRead(ctx context.Context, auth *models.AuthContext, id string) error {
	rows, err := s.messages.MarkRead(ctx, auth.SchoolID, id, auth.User.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

// Delete removes a message the caller participates in.
func (s *MessageService) Delete(ctx context.Context, auth *models.AuthContext, id string) error {
	rows, err := s.messages.Delete(ctx, auth.SchoolID, id, auth.User.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete message")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}
