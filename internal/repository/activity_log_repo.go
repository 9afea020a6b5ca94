package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rei-nationwide/platform-api/internal/models"
)

// ActivityWithActor is an activity row joined with its actor's display fields.
// The join is a soft reference: a missing user leaves the fields nil.
type ActivityWithActor struct {
	models.ActivityLog
	UserName  *string `json:"user_name"`
	UserEmail *string `json:"user_email"`
}

// ActivityLogRepository persists the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]ActivityWithActor, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]ActivityWithActor, error) {
	var entries []ActivityWithActor
	err := r.db.WithContext(ctx).
		Table("activity_logs").
		Select("activity_logs.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id").
		Order("activity_logs.created_at DESC, activity_logs.id DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
