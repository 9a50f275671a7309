package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/utils"
)

const (
	NotificationJobName       = "notification-cleanup"
	defaultNotificationMaxAge = 30 * 24 * time.Hour
)

type notificationCleaner interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJob removes read notifications older than the retention window
type NotificationCleanupJob struct {
	repo   notificationCleaner
	maxAge time.Duration
	now    func() time.Time
}

// NewNotificationCleanupJob builds the cleanup job; a non-positive maxAge means 30 days
func NewNotificationCleanupJob(repo notificationCleaner, maxAge time.Duration) (*NotificationCleanupJob, error) {
	if repo == nil {
		return nil, errors.New("notification repository required")
	}
	if maxAge <= 0 {
		maxAge = defaultNotificationMaxAge
	}
	return &NotificationCleanupJob{repo: repo, maxAge: maxAge, now: time.Now}, nil
}

func (j *NotificationCleanupJob) Name() string { return NotificationJobName }

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	deleted, err := j.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	utils.Info("sweep: notification cleanup complete", map[string]any{
		"cutoff":       cutoff.Format(time.RFC3339),
		"rows_deleted": deleted,
	})
	return nil
}
