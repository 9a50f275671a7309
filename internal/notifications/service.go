package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"
)

const defaultListLimit = 50

// Service persists and serves in-app notifications
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &Service{repo: repo, now: time.Now}, nil
}

// Notify stores a notification for a user
func (s *Service) Notify(ctx context.Context, userID int64, title, message string, kind models.NotificationKind, sourceTag string, relatedID *int64) error {
	if userID <= 0 {
		return fmt.Errorf("notifications: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("notifications: %w - missing title", biddingerrors.ErrInvalidInput)
	}
	if kind == "" {
		kind = models.NotifySystem
	}

	notification := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		SourceTag: sourceTag,
		RelatedID: relatedID,
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("notifications: store notification for user %d: %w", userID, err)
	}

	utils.Debug("notification stored", map[string]any{
		"notification_id": notification.ID,
		"user_id":         userID,
		"kind":            kind,
		"source":          sourceTag,
	})
	return nil
}

// List returns a user's notifications, newest first
func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("notifications: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	rows, err := s.repo.List(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("notifications: list for user %d: %w", userID, err)
	}
	return rows, nil
}

// UnreadCount returns how many notifications the user has not read
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notifications: count unread for user %d: %w", userID, err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read. Marking twice is not an error.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if userID <= 0 || notificationID <= 0 {
		return fmt.Errorf("notifications: %w - missing user or notification id", biddingerrors.ErrInvalidInput)
	}
	found, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("notifications: mark %d read: %w", notificationID, err)
	}
	if !found {
		return fmt.Errorf("notifications: %w - id %d", biddingerrors.ErrNotificationNotFound, notificationID)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("notifications: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("notifications: mark all read for user %d: %w", userID, err)
	}
	return count, nil
}
