package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// respondError maps a service error onto the HTTP status for its kind.
// Internal errors get a generic message so storage details never leak.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == 500 {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// publicUserView is the limited profile embedded in ride and booking payloads
func publicUserView(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"fullName":    u.FullName(),
		"avatar":      u.Avatar,
		"isVerified":  u.IsVerified,
		"email":       u.Email,
		"phoneNumber": u.PhoneNumber,
	}
}

// rideView serializes a ride with its derived seat fields
func rideView(r *models.Ride) gin.H {
	view := gin.H{
		"id":                 r.ID,
		"driverId":           r.DriverID,
		"origin":             r.Origin,
		"originAddress":      r.OriginAddress,
		"destination":        r.Destination,
		"destinationAddress": r.DestinationAddress,
		"departureTime":      r.DepartureTime,
		"arrivalTime":        r.ArrivalTime,
		"price":              r.Price,
		"seatsAvailable":     r.SeatsAvailable,
		"totalSeats":         r.TotalSeats,
		"seatsBooked":        r.SeatsBooked(),
		"isFull":             r.IsFull(),
		"description":        r.Description,
		"status":             r.Status,
		"instantBooking":     r.InstantBooking,
		"createdAt":          r.CreatedAt,
		"updatedAt":          r.UpdatedAt,
	}
	if r.Driver.ID != 0 {
		view["driver"] = publicUserView(&r.Driver)
	}
	if r.Preferences != nil {
		view["preferences"] = r.Preferences
	}
	return view
}

// bookingView serializes a booking with its ride and passenger
func bookingView(b *models.Booking) gin.H {
	view := gin.H{
		"id":          b.ID,
		"rideId":      b.RideID,
		"passengerId": b.PassengerID,
		"seats":       b.Seats,
		"status":      b.Status,
		"message":     b.Message,
		"createdAt":   b.CreatedAt,
		"updatedAt":   b.UpdatedAt,
	}
	if b.Ride.ID != 0 {
		view["ride"] = rideView(&b.Ride)
	}
	if b.Passenger.ID != 0 {
		view["passenger"] = publicUserView(&b.Passenger)
	}
	return view
}
