package notifications

import (
	"context"
	"time"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// Service exposes the read side of the notification sink.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns a notification, recipient only.
func (s *Service) Get(ctx context.Context, id, actorID uint) (*models.Notification, error) {
	n, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != actorID {
		return nil, apperrors.NotFound("notification not found")
	}
	return n, nil
}

// List returns the actor's notifications, newest first.
func (s *Service) List(ctx context.Context, actorID uint, f Filter) ([]models.Notification, error) {
	return s.store.List(ctx, actorID, f)
}

// UnreadCount returns how many of the actor's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, actorID uint) (int64, error) {
	return s.store.UnreadCount(ctx, actorID)
}

// MarkRead sets the read flag and timestamp. Calling it on an already
// read notification is a no-op returning the unchanged record.
func (s *Service) MarkRead(ctx context.Context, id, actorID uint) (*models.Notification, error) {
	n, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != actorID {
		return nil, apperrors.Authorization("not the recipient of this notification")
	}
	if n.IsRead {
		return n, nil
	}
	now := time.Now()
	if err := s.store.MarkRead(ctx, id, now); err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

// MarkAllRead bulk-acknowledges the actor's unread notifications and
// returns how many were affected.
func (s *Service) MarkAllRead(ctx context.Context, actorID uint) (int64, error) {
	return s.store.MarkAllRead(ctx, actorID, time.Now())
}
