package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/bookings"
	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/services"
)

// BookingService is the lifecycle surface the handlers depend on.
type BookingService interface {
	Request(ctx context.Context, passengerID uint, in bookings.RequestInput) (*models.Booking, error)
	Accept(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)
	Decline(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)
}

// invalidateBookingCaches drops the cached aggregates a booking change
// can affect: both participants' stats and unread counts.
func invalidateBookingCaches(ctx context.Context, b *models.Booking) {
	if services.RedisClient == nil {
		return
	}
	services.InvalidateUserStats(ctx, b.PassengerID, b.Ride.DriverID)
	services.InvalidateUnreadCount(ctx, b.PassengerID)
	services.InvalidateUnreadCount(ctx, b.Ride.DriverID)
}

// CreateBooking requests seats on a ride
func CreateBooking(svc BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID  uint   `json:"rideId" binding:"required"`
			Seats   *int   `json:"seats"`
			Message string `json:"message"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := svc.Request(c.Request.Context(), userId, bookings.RequestInput{
			RideID:  input.RideID,
			Seats:   input.Seats,
			Message: input.Message,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		invalidateBookingCaches(c.Request.Context(), booking)
		c.JSON(201, bookingView(booking))
	}
}

// AcceptBooking accepts a pending request (driver only)
func AcceptBooking(svc BookingService) gin.HandlerFunc {
	return bookingTransition(svc.Accept)
}

// DeclineBooking declines a pending request (driver only)
func DeclineBooking(svc BookingService) gin.HandlerFunc {
	return bookingTransition(svc.Decline)
}

// CancelBooking cancels a pending or accepted booking (passenger only)
func CancelBooking(svc BookingService) gin.HandlerFunc {
	return bookingTransition(svc.Cancel)
}

func bookingTransition(op func(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := op(c.Request.Context(), uint(bookingID), userId)
		if err != nil {
			respondError(c, err)
			return
		}

		invalidateBookingCaches(c.Request.Context(), booking)
		c.JSON(200, bookingView(booking))
	}
}

// GetBooking retrieves a booking, visible only to its passenger or
// the ride's driver
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var booking models.Booking
		if err := db.Preload("Ride").Preload("Ride.Driver").Preload("Passenger").
			First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.PassengerID != userId && booking.Ride.DriverID != userId {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		c.JSON(200, bookingView(&booking))
	}
}

// GetMyBookings retrieves the current user's bookings, as passenger by
// default or across their rides with ?as=driver
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		query := db.Preload("Ride").Preload("Ride.Driver").Preload("Passenger").
			Model(&models.Booking{})

		if c.DefaultQuery("as", "passenger") == "driver" {
			query = query.Joins("JOIN rides ON rides.id = bookings.ride_id").
				Where("rides.driver_id = ?", userId)
		} else {
			query = query.Where("passenger_id = ?", userId)
		}

		if status := c.Query("status"); status != "" {
			query = query.Where("bookings.status = ?", status)
		}

		var results []models.Booking
		if err := query.Order("bookings.created_at DESC").Find(&results).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, bookingView(&results[i]))
		}
		c.JSON(200, views)
	}
}

// GetRideBookings retrieves all bookings for a ride (driver only)
func GetRideBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var ride models.Ride
		if err := db.First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Only the driver can view this ride's bookings"})
			return
		}

		query := db.Preload("Passenger").Where("ride_id = ?", ride.ID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var results []models.Booking
		if err := query.Order("created_at ASC").Find(&results).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, bookingView(&results[i]))
		}
		c.JSON(200, views)
	}
}
