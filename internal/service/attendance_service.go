package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, schoolID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	Counts(ctx context.Context, schoolID, studentID string) (*models.AttendanceCounts, error)
}

type attendanceClassRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.ClassDetail, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.StudentDetail, error)
}

// AttendanceService owns daily marking and the derived attendance rate.
type AttendanceService struct {
	attendance attendanceRepository
	classes    attendanceClassRepository
	students   attendanceStudentRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendance attendanceRepository, classes attendanceClassRepository, students attendanceStudentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{attendance: attendance, classes: classes, students: students, validator: validate, logger: logger}
}

// List returns attendance records visible to the caller.
func (s *AttendanceService) List(ctx context.Context, auth *models.AuthContext, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	switch auth.User.Role {
	case models.RoleTeacher:
		filter.TaughtBy = auth.User.ID
	case models.RoleParent:
		filter.ParentOf = auth.User.ID
	}

	records, total, err := s.attendance.List(ctx, auth.SchoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Mark records one student's status for one day. Marking the same day again
// replaces the earlier status in place.
func (s *AttendanceService) Mark(ctx context.Context, auth *models.AuthContext, req models.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	if err := s.checkClassAssignment(ctx, auth, req.ClassID); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, auth.SchoolID, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.ClassID == nil || *student.ClassID != req.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not in that class")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	record := &models.AttendanceRecord{
		SchoolID:  auth.SchoolID,
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Date:      date,
		Status:    req.Status,
		MarkedBy:  auth.User.ID,
	}
	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return record, nil
}

// BulkMark marks a whole class in one call. Entries fail independently and
// failures never abort the batch.
func (s *AttendanceService) BulkMark(ctx context.Context, auth *models.AuthContext, req models.BulkAttendanceRequest) (*models.ImportSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}

	summary := &models.ImportSummary{Errors: []string{}}
	for i, entry := range req.Records {
		if _, err := s.Mark(ctx, auth, entry); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %s", i+1, appErrors.FromError(err).Message))
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// Summary returns the derived attendance rate for one student: present and
// late days over all marked days, as a percentage rounded to one decimal
// place. A student with no marked days has a rate of zero.
func (s *AttendanceService) Summary(ctx context.Context, auth *models.AuthContext, studentID string) (*models.AttendanceSummary, error) {
	student, err := s.students.FindByID(ctx, auth.SchoolID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	visible, err := s.studentVisible(ctx, auth, student)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	counts, err := s.attendance.Counts(ctx, auth.SchoolID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}

	return &models.AttendanceSummary{
		StudentID:        studentID,
		AttendanceCounts: *counts,
		Rate:             AttendanceRate(counts),
	}, nil
}

// AttendanceRate computes the percentage of marked days on which the student
// showed up, counting late arrivals as attended, rounded to one decimal.
func AttendanceRate(counts *models.AttendanceCounts) float64 {
	if counts.Total == 0 {
		return 0
	}
	rate := float64(counts.Present+counts.Late) / float64(counts.Total) * 100
	return math.Round(rate*10) / 10
}

func (s *AttendanceService) checkClassAssignment(ctx context.Context, auth *models.AuthContext, classID string) error {
	class, err := s.classes.FindByID(ctx, auth.SchoolID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
	}
	if auth.User.Role == models.RoleTeacher {
		if class.TeacherID == nil || *class.TeacherID != auth.User.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "class is not assigned to you")
		}
	}
	return nil
}

func (s *AttendanceService) studentVisible(ctx context.Context, auth *models.AuthContext, student *models.StudentDetail) (bool, error) {
	switch auth.User.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleParent:
		return student.ParentID != nil && *student.ParentID == auth.User.ID, nil
	case models.RoleTeacher:
		if student.ClassID == nil {
			return false, nil
		}
		class, err := s.classes.FindByID(ctx, auth.SchoolID, *student.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
		}
		return class.TeacherID != nil && *class.TeacherID == auth.User.ID, nil
	}
	return false, nil
}
