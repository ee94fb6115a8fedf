package models

import "time"

// AttendanceStatus is the closed set of daily marks.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a known mark.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord is one student's mark for one day. The natural key is
// (student, date) within a school; re-marking updates in place.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	SchoolID  string           `db:"school_id" json:"school_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceCounts are the per-status totals for one student.
type AttendanceCounts struct {
	Total   int `db:"total" json:"total"`
	Present int `db:"present" json:"present"`
	Absent  int `db:"absent" json:"absent"`
	Late    int `db:"late" json:"late"`
	Excused int `db:"excused" json:"excused"`
}

// AttendanceSummary is the derived per-student attendance rate. Rate counts
// present and late days against all marked days, as a percentage rounded to
// one decimal place.
type AttendanceSummary struct {
	StudentID string `json:"student_id"`
	AttendanceCounts
	Rate float64 `json:"rate"`
}

// MarkAttendanceRequest marks one student for one day. Marking the same
// (student, date) again replaces the earlier status.
type MarkAttendanceRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	ClassID   string           `json:"class_id" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// BulkAttendanceRequest marks a whole class in one call.
type BulkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records" validate:"required,min=1,dive"`
}

// AttendanceFilter captures filtering criteria for listing attendance.
// TaughtBy restricts results to classes assigned to that teacher; ParentOf
// restricts results to students linked to that parent.
type AttendanceFilter struct {
	StudentID string
	ClassID   string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	TaughtBy  string
	ParentOf  string
	Page      int
	PageSize  int
}
