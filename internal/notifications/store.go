package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
	"gorm.io/gorm"
)

// Filter narrows a notification listing.
type Filter struct {
	Type   string
	IsRead *bool
}

// Store is the persistence surface for reading and acknowledging
// notifications. Records are only ever created by booking transitions
// and ride cancellations, inside their transactions.
type Store interface {
	ByID(ctx context.Context, id uint) (*models.Notification, error)
	List(ctx context.Context, recipientID uint, f Filter) ([]models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID uint, at time.Time) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the GORM-backed notification store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).Preload("Sender").First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("notification not found")
		}
		return nil, err
	}
	return &n, nil
}

func (s *gormStore) List(ctx context.Context, recipientID uint, f Filter) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC")

	if f.Type != "" {
		query = query.Where("notification_type = ?", f.Type)
	}
	if f.IsRead != nil {
		query = query.Where("is_read = ?", *f.IsRead)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *gormStore) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (s *gormStore) MarkRead(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (s *gormStore) MarkAllRead(ctx context.Context, recipientID uint, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
