package models

import "time"

// Message is a direct message between two users of the same school.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Content     string    `db:"content" json:"content"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageDetail joins resolved participant names onto a message row.
type MessageDetail struct {
	Message
	SenderName    string `db:"sender_name" json:"sender_name"`
	RecipientName string `db:"recipient_name" json:"recipient_name"`
}

// SendMessageRequest sends a direct message to another user of the same
// school.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// MessageBox selects which side of the conversation to list.
type MessageBox string

const (
	MessageBoxInbox MessageBox = "inbox"
	MessageBoxSent  MessageBox = "sent"
)
