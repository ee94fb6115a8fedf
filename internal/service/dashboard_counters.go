package service

import (
	"context"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/repository"
)

// RepoCounters adapts the storage repositories to the counting surface the
// dashboard computes from.
type RepoCounters struct {
	Students      *repository.StudentRepository
	Users         *repository.UserRepository
	Classes       *repository.ClassRepository
	Subjects      *repository.SubjectRepository
	Grades        *repository.GradeRepository
	Announcements *repository.AnnouncementRepository
	Messages      *repository.MessageRepository
}

func (c *RepoCounters) CountStudents(ctx context.Context, schoolID string) (int, error) {
	return c.Students.Count(ctx, schoolID)
}

func (c *RepoCounters) CountUsersByRole(ctx context.Context, schoolID string, role models.UserRole) (int, error) {
	return c.Users.CountByRole(ctx, schoolID, role)
}

func (c *RepoCounters) CountClasses(ctx context.Context, schoolID string) (int, error) {
	return c.Classes.Count(ctx, schoolID)
}

func (c *RepoCounters) CountSubjects(ctx context.Context, schoolID string) (int, error) {
	return c.Subjects.Count(ctx, schoolID)
}

func (c *RepoCounters) CountGradesByStatus(ctx context.Context, schoolID string, status models.GradeStatus) (int, error) {
	return c.Grades.CountByStatus(ctx, schoolID, status)
}

func (c *RepoCounters) CountAnnouncements(ctx context.Context, schoolID string) (int, error) {
	return c.Announcements.Count(ctx, schoolID)
}

func (c *RepoCounters) CountUnreadMessages(ctx context.Context, schoolID, userID string) (int, error) {
	return c.Messages.CountUnread(ctx, schoolID, userID)
}

func (c *RepoCounters) CountChildren(ctx context.Context, schoolID, parentID string) (int, error) {
	return c.Students.CountByParent(ctx, schoolID, parentID)
}
