package models

import "time"

// Student is a pupil record. ClassID and ParentID are nullable references
// that are resolved by lookup, not enforced by the storage layer.
type Student struct {
	ID              string    `db:"id" json:"id"`
	SchoolID        string    `db:"school_id" json:"school_id"`
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	FullName        string    `db:"full_name" json:"full_name"`
	Gender          string    `db:"gender" json:"gender"`
	ClassID         *string   `db:"class_id" json:"class_id,omitempty"`
	ParentID        *string   `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the resolved class name onto a student row.
type StudentDetail struct {
	Student
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}

// StudentRequest creates or replaces a student record.
type StudentRequest struct {
	AdmissionNumber string  `json:"admission_number" validate:"required"`
	FullName        string  `json:"full_name" validate:"required"`
	Gender          string  `json:"gender" validate:"omitempty,oneof=male female"`
	ClassID         *string `json:"class_id"`
	ParentID        *string `json:"parent_id"`
}

// StudentFilter captures filtering criteria for listing students. TaughtBy
// restricts results to students in classes assigned to that teacher.
type StudentFilter struct {
	ClassID  string
	ParentID string
	TaughtBy string
	Search   string
	Page     int
	PageSize int
}
