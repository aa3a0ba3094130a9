package bookings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
	"gorm.io/gorm"
)

// Store is the persistence surface the booking service runs on. Both write
// methods must commit the booking write, the seat adjustment and the
// notification as a single atomic unit, re-checking the ride's current
// seat count so concurrent accepts cannot overbook.
type Store interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
	RideByID(ctx context.Context, id uint) (*models.Ride, error)
	// BookingByID loads the booking with its Ride and Passenger.
	BookingByID(ctx context.Context, id uint) (*models.Booking, error)
	HasActiveBooking(ctx context.Context, rideID, passengerID uint) (bool, error)
	// CreateBooking persists b, applies seatDelta to the ride's available
	// seats and appends n linked to the new booking, in one transaction.
	CreateBooking(ctx context.Context, b *models.Booking, seatDelta int, n *models.Notification) error
	// ApplyTransition flips the booking from its loaded status to "to",
	// adjusts the ride's seat count by seatDelta and appends n (may be
	// nil), in one transaction. A concurrent writer winning either the
	// status or the seat update yields a conflict error and no changes.
	ApplyTransition(ctx context.Context, b *models.Booking, to models.BookingStatus, seatDelta int, n *models.Notification) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the GORM-backed booking store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
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

func (s *gormStore) RideByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).Preload("Driver").First(&ride, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, err
	}
	return &ride, nil
}

func (s *gormStore) BookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).
		Preload("Ride").
		Preload("Ride.Driver").
		Preload("Passenger").
		First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (s *gormStore) HasActiveBooking(ctx context.Context, rideID, passengerID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("ride_id = ? AND passenger_id = ? AND status <> ?",
			rideID, passengerID, models.BookingStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) CreateBooking(ctx context.Context, b *models.Booking, seatDelta int, n *models.Notification) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applySeatDelta(tx, b.RideID, seatDelta); err != nil {
			return err
		}
		if err := tx.Create(b).Error; err != nil {
			return duplicateBookingConflict(err)
		}
		if n != nil {
			n.BookingID = &b.ID
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormStore) ApplyTransition(ctx context.Context, b *models.Booking, to models.BookingStatus, seatDelta int, n *models.Notification) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on the status the plan was computed against,
		// so two drivers racing on the same booking cannot both win.
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("booking is no longer %s", b.Status)
		}
		if err := applySeatDelta(tx, b.RideID, seatDelta); err != nil {
			return err
		}
		if n != nil {
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// duplicateBookingConflict converts the unique violation raised when two
// requests by the same passenger race past the duplicate check into the
// conflict the sequential path reports. Postgres error 23505 is
// unique_violation; the partial index on (ride_id, passenger_id) is the
// only unique constraint a booking insert can hit.
func duplicateBookingConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.Conflict("you already have a booking for this ride")
	}
	return err
}

// applySeatDelta adjusts seats_available with the bounds check in the
// UPDATE itself; zero rows affected means another transaction took the
// seats first (or would push the count out of range).
func applySeatDelta(tx *gorm.DB, rideID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	res := tx.Model(&models.Ride{}).
		Where("id = ? AND seats_available + ? >= 0 AND seats_available + ? <= total_seats",
			rideID, delta, delta).
		Update("seats_available", gorm.Expr("seats_available + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("not enough seats available")
	}
	return nil
}
