package models

import "time"

// Subject is a taught course attached to a class, optionally assigned to a
// teacher.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectRequest creates or replaces a subject.
type SubjectRequest struct {
	Name      string  `json:"name" validate:"required"`
	Code      string  `json:"code" validate:"required"`
	ClassID   string  `json:"class_id" validate:"required"`
	TeacherID *string `json:"teacher_id"`
}

// SubjectFilter captures filtering criteria for listing subjects.
type SubjectFilter struct {
	ClassID   string
	TeacherID string
	Page      int
	PageSize  int
}
