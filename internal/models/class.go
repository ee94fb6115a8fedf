package models

import "time"

// Class is a homeroom group for one academic year.
type Class struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	Name         string    `db:"name" json:"name"`
	Level        string    `db:"level" json:"level"`
	Section      string    `db:"section" json:"section"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail adds the recomputed-on-read student count. The count is never
// stored authoritatively.
type ClassDetail struct {
	Class
	StudentCount int `db:"student_count" json:"student_count"`
}

// ClassRequest creates or replaces a class.
type ClassRequest struct {
	Name         string  `json:"name" validate:"required"`
	Level        string  `json:"level" validate:"required"`
	Section      string  `json:"section"`
	TeacherID    *string `json:"teacher_id"`
	AcademicYear string  `json:"academic_year" validate:"required"`
}

// ClassFilter captures filtering criteria for listing classes.
type ClassFilter struct {
	TeacherID    string
	AcademicYear string
	Page         int
	PageSize     int
}
