package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, schoolID string, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.GradeDetail, error)
	Upsert(ctx context.Context, grade *models.Grade) error
	UpdateStatus(ctx context.Context, schoolID, id string, status models.GradeStatus) (int64, error)
}

type gradeSubjectRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.Subject, error)
}

type gradeStudentRepository interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.StudentDetail, error)
}

// GradeService owns grade entry and the draft/submitted/approved workflow.
// Total and letter grade are always derived server-side from the recorded
// scores.
type GradeService struct {
	grades    gradeRepository
	subjects  gradeSubjectRepository
	students  gradeStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(grades gradeRepository, subjects gradeSubjectRepository, students gradeStudentRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, subjects: subjects, students: students, validator: validate, logger: logger}
}

// List returns grades visible to the caller. Teachers see grades for their
// subjects, parents see approved grades of their own children only.
func (s *GradeService) List(ctx context.Context, auth *models.AuthContext, filter models.GradeFilter) ([]models.GradeDetail, *models.Pagination, error) {
	normalizePages(&filter.Page, &filter.PageSize)
	scopeGradeFilter(&filter, auth)

	grades, total, err := s.grades.List(ctx, auth.SchoolID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one grade if the caller is allowed to see it.
func (s *GradeService) Get(ctx context.Context, auth *models.AuthContext, id string) (*models.GradeDetail, error) {
	grade, err := s.grades.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade")
	}

	visible, err := s.visibleTo(ctx, auth, grade)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	return grade, nil
}

// Record creates or replaces the grade for (student, subject, term, year).
// Recording again overwrites the earlier scores in place and resets the
// workflow to draft.
func (s *GradeService) Record(ctx context.Context, auth *models.AuthContext, req models.RecordGradeRequest) (*models.GradeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if err := s.checkSubjectAssignment(ctx, auth, req.SubjectID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, auth.SchoolID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	total := req.CAScore + req.ExamScore
	grade := &models.Grade{
		SchoolID:     auth.SchoolID,
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		CAScore:      req.CAScore,
		ExamScore:    req.ExamScore,
		TotalScore:   total,
		LetterGrade:  models.LetterFor(total),
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Status:       models.GradeStatusDraft,
		RecordedBy:   auth.User.ID,
	}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	return s.grades.FindByID(ctx, auth.SchoolID, grade.ID)
}

// BulkRecord records many grades in one call. Each entry is validated and
// written independently; failures are collected and never abort the batch.
func (s *GradeService) BulkRecord(ctx context.Context, auth *models.AuthContext, req models.BulkGradeRequest) (*models.ImportSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk grade payload")
	}

	summary := &models.ImportSummary{Errors: []string{}}
	for i, entry := range req.Grades {
		if _, err := s.Record(ctx, auth, entry); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("entry %d: %s", i+1, appErrors.FromError(err).Message))
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// Submit moves a draft grade to submitted. Teachers may submit only grades
// for subjects assigned to them.
func (s *GradeService) Submit(ctx context.Context, auth *models.AuthContext, id string) (*models.GradeDetail, error) {
	grade, err := s.grades.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade")
	}
	if err := s.checkSubjectAssignment(ctx, auth, grade.SubjectID); err != nil {
		return nil, err
	}
	if grade.Status != models.GradeStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only draft grades can be submitted")
	}
	return s.setStatus(ctx, auth.SchoolID, id, models.GradeStatusSubmitted)
}

// Approve moves a submitted grade to approved. Approval is an admin action.
func (s *GradeService) Approve(ctx context.Context, auth *models.AuthContext, id string) (*models.GradeDetail, error) {
	grade, err := s.grades.FindByID(ctx, auth.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade")
	}
	if grade.Status != models.GradeStatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only submitted grades can be approved")
	}
	return s.setStatus(ctx, auth.SchoolID, id, models.GradeStatusApproved)
}

func (s *GradeService) setStatus(ctx context.Context, schoolID, id string, status models.GradeStatus) (*models.GradeDetail, error) {
	rows, err := s.grades.UpdateStatus(ctx, schoolID, id, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade status")
	}
	if rows == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	return s.grades.FindByID(ctx, schoolID, id)
}

// checkSubjectAssignment verifies the subject exists and, for teachers, that
// it is assigned to the caller.
func (s *GradeService) checkSubjectAssignment(ctx context.Context, auth *models.AuthContext, subjectID string) error {
	subject, err := s.subjects.FindByID(ctx, auth.SchoolID, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if auth.User.Role == models.RoleTeacher {
		if subject.TeacherID == nil || *subject.TeacherID != auth.User.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to you")
		}
	}
	return nil
}

func (s *GradeService) visibleTo(ctx context.Context, auth *models.AuthContext, grade *models.GradeDetail) (bool, error) {
	switch auth.User.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleTeacher:
		subject, err := s.subjects.FindByID(ctx, auth.SchoolID, grade.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
		}
		return subject.TeacherID != nil && *subject.TeacherID == auth.User.ID, nil
	case models.RoleParent:
		if grade.Status != models.GradeStatusApproved {
			return false, nil
		}
		student, err := s.students.FindByID(ctx, auth.SchoolID, grade.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
		}
		return student.ParentID != nil && *student.ParentID == auth.User.ID, nil
	}
	return false, nil
}

// scopeGradeFilter narrows a list filter to what the caller's role may see.
// Parents are locked to approved grades of their own children regardless of
// what the request asked for.
func scopeGradeFilter(filter *models.GradeFilter, auth *models.AuthContext) {
	switch auth.User.Role {
	case models.RoleTeacher:
		filter.TaughtBy = auth.User.ID
	case models.RoleParent:
		filter.ParentOf = auth.User.ID
		approved := models.GradeStatusApproved
		filter.Status = &approved
	}
}
