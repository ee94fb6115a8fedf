package models

import "time"

// GradeStatus tracks the grade approval workflow.
type GradeStatus string

const (
	GradeStatusDraft     GradeStatus = "draft"
	GradeStatusSubmitted GradeStatus = "submitted"
	GradeStatusApproved  GradeStatus = "approved"
)

// Valid reports whether the status is a known workflow state.
func (s GradeStatus) Valid() bool {
	switch s {
	case GradeStatusDraft, GradeStatusSubmitted, GradeStatusApproved:
		return true
	}
	return false
}

// Grade is one student's score for a subject in a term. The natural key is
// (student, subject, term, academic year) within a school; re-submission
// updates the existing row in place.
type Grade struct {
	ID           string      `db:"id" json:"id"`
	SchoolID     string      `db:"school_id" json:"school_id"`
	StudentID    string      `db:"student_id" json:"student_id"`
	SubjectID    string      `db:"subject_id" json:"subject_id"`
	CAScore      float64     `db:"ca_score" json:"ca_score"`
	ExamScore    float64     `db:"exam_score" json:"exam_score"`
	TotalScore   float64     `db:"total_score" json:"total_score"`
	LetterGrade  string      `db:"letter_grade" json:"letter_grade"`
	Term         string      `db:"term" json:"term"`
	AcademicYear string      `db:"academic_year" json:"academic_year"`
	Status       GradeStatus `db:"status" json:"status"`
	RecordedBy   string      `db:"recorded_by" json:"recorded_by"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// GradeDetail joins resolved student and subject names onto a grade row.
type GradeDetail struct {
	Grade
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// RecordGradeRequest records or re-records one grade. Scores are validated
// as non-negative only; total and letter grade are always derived server-side.
type RecordGradeRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	CAScore      float64 `json:"ca_score" validate:"min=0"`
	ExamScore    float64 `json:"exam_score" validate:"min=0"`
	Term         string  `json:"term" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required"`
}

// BulkGradeRequest records many grades in one call. Entries fail or succeed
// independently.
type BulkGradeRequest struct {
	Grades []RecordGradeRequest `json:"grades" validate:"required,min=1,dive"`
}

// GradeFilter captures filtering criteria for listing grades. TaughtBy
// restricts results to subjects assigned to that teacher; ParentOf restricts
// results to students linked to that parent.
type GradeFilter struct {
	StudentID    string
	SubjectID    string
	Term         string
	AcademicYear string
	Status       *GradeStatus
	TaughtBy     string
	ParentOf     string
	Page         int
	PageSize     int
}

// LetterFor maps a total score to its letter grade. This table is the single
// source of truth shared by single and bulk grade entry.
func LetterFor(total float64) string {
	switch {
	case total >= 70:
		return "A"
	case total >= 60:
		return "B"
	case total >= 50:
		return "C"
	case total >= 45:
		return "D"
	case total >= 40:
		return "E"
	default:
		return "F"
	}
}
