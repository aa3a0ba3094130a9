package reviews

import (
	"context"
	"errors"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
	"gorm.io/gorm"
)

// Store is the persistence surface the review service needs.
type Store interface {
	RideByID(ctx context.Context, id uint) (*models.Ride, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	// HasAcceptedBooking reports whether the user holds an accepted
	// booking on the ride, which makes them a participant.
	HasAcceptedBooking(ctx context.Context, rideID, userID uint) (bool, error)
	ReviewExists(ctx context.Context, rideID, reviewerID, revieweeID uint) (bool, error)
	CreateReview(ctx context.Context, r *models.Review) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the GORM-backed review store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) RideByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).First(&ride, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, err
	}
	return &ride, nil
}

func (s *gormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) HasAcceptedBooking(ctx context.Context, rideID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("ride_id = ? AND passenger_id = ? AND status = ?",
			rideID, userID, models.BookingStatusAccepted).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) ReviewExists(ctx context.Context, rideID, reviewerID, revieweeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("ride_id = ? AND reviewer_id = ? AND reviewee_id = ?",
			rideID, reviewerID, revieweeID).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) CreateReview(ctx context.Context, r *models.Review) error {
	return s.db.WithContext(ctx).Create(r).Error
}
