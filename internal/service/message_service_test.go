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

type fakeMessages struct {
	byID map[string]*models.MessageDetail
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{byID: map[string]*models.MessageDetail{}}
}

func (f *fakeMessages) Create(_ context.Context, message *models.Message) error {
	message.ID = "msg-1"
	f.byID[message.ID] = &models.MessageDetail{Message: *message}
	return nil
}

func (f *fakeMessages) FindByID(_ context.Context, schoolID, id string) (*models.MessageDetail, error) {
	message, ok := f.byID[id]
	if !ok || message.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return message, nil
}

func (f *fakeMessages) ListForUser(_ context.Context, _, _ string, _ models.MessageBox) ([]models.MessageDetail, error) {
	return nil, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, schoolID, id, recipientID string) (int64, error) {
	message, ok := f.byID[id]
	if !ok || message.SchoolID != schoolID || message.RecipientID != recipientID {
		return 0, nil
	}
	message.IsRead = true
	return 1, nil
}

func (f *fakeMessages) Delete(_ context.Context, schoolID, id, userID string) (int64, error) {
	message, ok := f.byID[id]
	if !ok || message.SchoolID != schoolID {
		return 0, nil
	}
	if message.SenderID != userID && message.RecipientID != userID {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

type fakeMessageUsers struct {
	byID map[string]*models.User
}

func (f *fakeMessageUsers) FindInSchool(_ context.Context, schoolID, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok || user.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newMessageFixture() (*MessageService, *fakeMessages) {
	messages := newFakeMessages()
	users := &fakeMessageUsers{byID: map[string]*models.User{
		"teacher-1": {ID: "teacher-1", SchoolID: "school-1"},
		"outsider":  {ID: "outsider", SchoolID: "school-2"},
	}}
	return NewMessageService(messages, users, nil, nil), messages
}

func TestSendToCrossTenantRecipientLooksMissing(t *testing.T) {
	svc, _ := newMessageFixture()

	// A recipient in another school and a recipient that does not exist at
	// all must be indistinguishable to the sender.
	_, crossTenant := svc.Send(context.Background(), adminCtx(), models.SendMessageRequest{
		RecipientID: "outsider", Subject: "hi", Content: "hello",
	})
	_, absent := svc.Send(context.Background(), adminCtx(), models.SendMessageRequest{
		RecipientID: "ghost", Subject: "hi", Content: "hello",
	})

	require.Error(t, crossTenant)
	require.Error(t, absent)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(crossTenant).Code)
	assert.Equal(t, appErrors.FromError(absent).Message, appErrors.FromError(crossTenant).Message)
}

func TestSendRejectsSelf(t *testing.T) {
	svc, _ := newMessageFixture()

	_, err := svc.Send(context.Background(), adminCtx(), models.SendMessageRequest{
		RecipientID: "admin-1", Subject: "hi", Content: "hello",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOnlyRecipientCanMarkRead(t *testing.T) {
	svc, messages := newMessageFixture()

	sent, err := svc.Send(context.Background(), adminCtx(), models.SendMessageRequest{
		RecipientID: "teacher-1", Subject: "hi", Content: "hello",
	})
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), adminCtx(), sent.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.MarkRead(context.Background(), teacherCtx("teacher-1"), sent.ID))
	assert.True(t, messages.byID[sent.ID].IsRead)
}

func TestGetHiddenFromNonParticipants(t *testing.T) {
	svc, _ := newMessageFixture()

	sent, err := svc.Send(context.Background(), adminCtx(), models.SendMessageRequest{
		RecipientID: "teacher-1", Subject: "hi", Content: "hello",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), parentCtx("parent-1"), sent.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
