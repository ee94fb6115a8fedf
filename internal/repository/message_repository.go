package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/OsasDev/qirllo-api/internal/models"
)

// MessageRepository manages persistence for direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageSelect = `SELECT m.id, m.school_id, m.sender_id, m.recipient_id, m.subject, m.content, m.is_read, m.created_at,
        su.full_name AS sender_name, ru.full_name AS recipient_name
        FROM messages m
        JOIN users su ON su.id = m.sender_id
        JOIN users ru ON ru.id = m.recipient_id`

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO messages (id, school_id, sender_id, recipient_id, subject, content, is_read, created_at)
        VALUES (:id, :school_id, :sender_id, :recipient_id, :subject, :content, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// FindByID fetches a message of one school by ID.
func (r *MessageRepository) FindByID(ctx context.Context, schoolID, id string) (*models.MessageDetail, error) {
	query := messageSelect + ` WHERE m.id = $1 AND m.school_id = $2 LIMIT 1`
	var detail models.MessageDetail
	if err := r.db.GetContext(ctx, &detail, query, id, schoolID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListForUser returns one side of a user's conversations, newest first.
func (r *MessageRepository) ListForUser(ctx context.Context, schoolID, userID string, box models.MessageBox) ([]models.MessageDetail, error) {
	column := "m.recipient_id"
	if box == models.MessageBoxSent {
		column = "m.sender_id"
	}
	query := fmt.Sprintf("%s WHERE m.school_id = $1 AND %s = $2 ORDER BY m.created_at DESC", messageSelect, column)
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, schoolID, userID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// MarkRead flags a message as read. Only the recipient may do so, which the
// query enforces directly.
func (r *MessageRepository) MarkRead(ctx context.Context, schoolID, id, recipientID string) (int64, error) {
	const query = `UPDATE messages SET is_read = true WHERE id = $1 AND school_id = $2 AND recipient_id = $3`
	res, err := r.db.ExecContext(ctx, query, id, schoolID, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark message read rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a message when the caller is a participant.
func (r *MessageRepository) Delete(ctx context.Context, schoolID, id, userID string) (int64, error) {
	const query = `DELETE FROM messages WHERE id = $1 AND school_id = $2 AND (sender_id = $3 OR recipient_id = $3)`
	res, err := r.db.ExecContext(ctx, query, id, schoolID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete message rows affected: %w", err)
	}
	return affected, nil
}

// CountUnread counts unread messages addressed to a user.
func (r *MessageRepository) CountUnread(ctx context.Context, schoolID, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE school_id = $1 AND recipient_id = $2 AND is_read = false`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID, userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return total, nil
}
