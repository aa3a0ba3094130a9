package database

import (
	"github.com/ridelink/ridelink-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.RidePreferences{},
		&models.Booking{},
		&models.Review{},
		&models.Notification{},
		&models.Car{},
	)
	if err != nil {
		return err
	}

	// Seat counts must stay within capacity even if application code
	// misbehaves; the booking transitions rely on this bound.
	constraints := []string{
		`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_seats_range_check`,
		`ALTER TABLE rides ADD CONSTRAINT rides_seats_range_check CHECK (seats_available >= 0 AND seats_available <= total_seats)`,
		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_seats_positive_check`,
		`ALTER TABLE bookings ADD CONSTRAINT bookings_seats_positive_check CHECK (seats >= 1)`,
		`ALTER TABLE reviews DROP CONSTRAINT IF EXISTS reviews_rating_range_check`,
		`ALTER TABLE reviews ADD CONSTRAINT reviews_rating_range_check CHECK (rating >= 1 AND rating <= 5)`,
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	// One live booking per (ride, passenger); cancelled bookings do not
	// block re-booking, so the index is partial.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_active_per_passenger
		ON bookings (ride_id, passenger_id)
		WHERE status <> 'cancelled' AND deleted_at IS NULL`).Error; err != nil {
		return err
	}

	// One review per (ride, reviewer, reviewee) triple.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_unique_triple
		ON reviews (ride_id, reviewer_id, reviewee_id)
		WHERE deleted_at IS NULL`).Error; err != nil {
		return err
	}

	return nil
}
