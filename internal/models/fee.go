package models

import "time"

// FeeStructure defines what a class level owes for a term. The natural key is
// (class level, term, academic year) within a school; posting again upserts.
// Total is the derived sum of the component amounts.
type FeeStructure struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	ClassLevel   string    `db:"class_level" json:"class_level"`
	Term         string    `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Tuition      float64   `db:"tuition" json:"tuition"`
	Development  float64   `db:"development" json:"development"`
	Examination  float64   `db:"examination" json:"examination"`
	Sports       float64   `db:"sports" json:"sports"`
	Total        float64   `db:"total" json:"total"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Sum recomputes the derived total from the component amounts.
func (f *FeeStructure) Sum() float64 {
	return f.Tuition + f.Development + f.Examination + f.Sports
}

// FeePayment is an append-only payment record. Receipt numbers are generated
// when absent.
type FeePayment struct {
	ID            string    `db:"id" json:"id"`
	SchoolID      string    `db:"school_id" json:"school_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Method        string    `db:"method" json:"method"`
	Term          string    `db:"term" json:"term"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	ReceiptNumber string    `db:"receipt_number" json:"receipt_number"`
	RecordedBy    string    `db:"recorded_by" json:"recorded_by"`
	PaidAt        time.Time `db:"paid_at" json:"paid_at"`
}

// FeeStructureRequest creates or replaces the structure for one class level
// and term. The total is always recomputed from the components.
type FeeStructureRequest struct {
	ClassLevel   string  `json:"class_level" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Tuition      float64 `json:"tuition" validate:"min=0"`
	Development  float64 `json:"development" validate:"min=0"`
	Examination  float64 `json:"examination" validate:"min=0"`
	Sports       float64 `json:"sports" validate:"min=0"`
}

// RecordPaymentRequest appends one payment for a student.
type RecordPaymentRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Method       string  `json:"method" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required"`
}

// FeeBalance is the derived position for one student and term. Balance may be
// negative when overpaid; Outstanding is the display value clamped at zero.
type FeeBalance struct {
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name,omitempty"`
	ClassLevel   string  `json:"class_level,omitempty"`
	Term         string  `json:"term"`
	AcademicYear string  `json:"academic_year"`
	TotalFees    float64 `json:"total_fees"`
	TotalPaid    float64 `json:"total_paid"`
	Balance      float64 `json:"balance"`
	Outstanding  float64 `json:"outstanding"`
}

// Clamp fills the display-only Outstanding field from the raw balance.
func (b *FeeBalance) Clamp() {
	if b.Balance > 0 {
		b.Outstanding = b.Balance
	} else {
		b.Outstanding = 0
	}
}
