package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/pkg/config"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type dashboardCounters interface {
	CountStudents(ctx context.Context, schoolID string) (int, error)
	CountUsersByRole(ctx context.Context, schoolID string, role models.UserRole) (int, error)
	CountClasses(ctx context.Context, schoolID string) (int, error)
	CountSubjects(ctx context.Context, schoolID string) (int, error)
	CountGradesByStatus(ctx context.Context, schoolID string, status models.GradeStatus) (int, error)
	CountAnnouncements(ctx context.Context, schoolID string) (int, error)
	CountUnreadMessages(ctx context.Context, schoolID, userID string) (int, error)
	CountChildren(ctx context.Context, schoolID, parentID string) (int, error)
}

// DashboardService computes role-specific aggregate counts. Results are
// cached per user when a cache is configured; a cache failure falls through
// to a fresh computation.
type DashboardService struct {
	counters dashboardCounters
	cache    dashboardCache
	logger   *zap.Logger
	config   config.DashboardConfig
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(counters dashboardCounters, cache dashboardCache, logger *zap.Logger, cfg config.DashboardConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{counters: counters, cache: cache, logger: logger, config: cfg}
}

// Stats returns the dashboard for the caller's role.
func (s *DashboardService) Stats(ctx context.Context, auth *models.AuthContext) (*models.DashboardStats, error) {
	key := fmt.Sprintf("dashboard:%s:%s", auth.SchoolID, auth.User.ID)

	if s.cacheEnabled() {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx, auth)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, stats, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context, auth *models.AuthContext) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	announcements, err := s.counters.CountAnnouncements(ctx, auth.SchoolID)
	if err != nil {
		return nil, s.countErr(err)
	}
	stats.Announcements = &announcements

	unread, err := s.counters.CountUnreadMessages(ctx, auth.SchoolID, auth.User.ID)
	if err != nil {
		return nil, s.countErr(err)
	}
	stats.UnreadMessages = &unread

	switch auth.User.Role {
	case models.RoleAdmin:
		if stats.Students, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountStudents(ctx, auth.SchoolID)
		}); err != nil {
			return nil, err
		}
		if stats.Teachers, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountUsersByRole(ctx, auth.SchoolID, models.RoleTeacher)
		}); err != nil {
			return nil, err
		}
		if stats.Parents, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountUsersByRole(ctx, auth.SchoolID, models.RoleParent)
		}); err != nil {
			return nil, err
		}
		if stats.Classes, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountClasses(ctx, auth.SchoolID)
		}); err != nil {
			return nil, err
		}
		if stats.Subjects, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountSubjects(ctx, auth.SchoolID)
		}); err != nil {
			return nil, err
		}
		if stats.PendingGrades, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountGradesByStatus(ctx, auth.SchoolID, models.GradeStatusSubmitted)
		}); err != nil {
			return nil, err
		}
	case models.RoleTeacher:
		if stats.Classes, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountClasses(ctx, auth.SchoolID)
		}); err != nil {
			return nil, err
		}
		if stats.Subjects, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountSubjects(ctx, auth.SchoolID)
		}); err != nil {
			return nil, err
		}
	case models.RoleParent:
		if stats.Children, err = s.count(ctx, func(ctx context.Context) (int, error) {
			return s.counters.CountChildren(ctx, auth.SchoolID, auth.User.ID)
		}); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (s *DashboardService) count(ctx context.Context, fn func(context.Context) (int, error)) (*int, error) {
	n, err := fn(ctx)
	if err != nil {
		return nil, s.countErr(err)
	}
	return &n, nil
}

func (s *DashboardService) countErr(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute dashboard")
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cache != nil && s.config.CacheEnabled
}
