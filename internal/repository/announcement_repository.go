package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/OsasDev/qirllo-api/internal/models"
)

// AnnouncementRepository manages persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs an AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

const announcementColumns = "id, school_id, title, content, audience, priority, author_id, created_at"

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	announcement.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO announcements (id, school_id, title, content, audience, priority, author_id, created_at)
        VALUES (:id, :school_id, :title, :content, :audience, :priority, :author_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// ListForAudiences returns announcements of one school visible to any of the
// given audiences, newest first.
func (r *AnnouncementRepository) ListForAudiences(ctx context.Context, schoolID string, audiences []models.Audience) ([]models.Announcement, error) {
	values := make([]string, len(audiences))
	for i, a := range audiences {
		values[i] = string(a)
	}
	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE school_id = $1 AND audience = ANY($2) ORDER BY created_at DESC`, announcementColumns)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, schoolID, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// FindByID fetches an announcement of one school by ID.
func (r *AnnouncementRepository) FindByID(ctx context.Context, schoolID, id string) (*models.Announcement, error) {
	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE id = $1 AND school_id = $2 LIMIT 1`, announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id, schoolID); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Delete removes an announcement of one school.
func (r *AnnouncementRepository) Delete(ctx context.Context, schoolID, id string) (int64, error) {
	const query = `DELETE FROM announcements WHERE id = $1 AND school_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, schoolID)
	if err != nil {
		return 0, fmt.Errorf("delete announcement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete announcement rows affected: %w", err)
	}
	return affected, nil
}

// Count counts all announcements of one school.
func (r *AnnouncementRepository) Count(ctx context.Context, schoolID string) (int, error) {
	const query = `SELECT COUNT(*) FROM announcements WHERE school_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, schoolID); err != nil {
		return 0, fmt.Errorf("count announcements: %w", err)
	}
	return total, nil
}
