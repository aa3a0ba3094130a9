package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/services"
)

// CreateRide handles the creation of a new ride by its driver
func CreateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Origin             string                  `json:"origin" binding:"required"`
			OriginAddress      string                  `json:"originAddress"`
			Destination        string                  `json:"destination" binding:"required"`
			DestinationAddress string                  `json:"destinationAddress"`
			DepartureTime      time.Time               `json:"departureTime" binding:"required"`
			ArrivalTime        *time.Time              `json:"arrivalTime"`
			Price              float64                 `json:"price"`
			SeatsAvailable     int                     `json:"seatsAvailable" binding:"required"`
			TotalSeats         int                     `json:"totalSeats" binding:"required"`
			Description        string                  `json:"description"`
			InstantBooking     bool                    `json:"instantBooking"`
			Preferences        *models.RidePreferences `json:"preferences"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.SeatsAvailable < 1 {
			c.JSON(400, gin.H{"error": "Must have at least 1 available seat"})
			return
		}
		if input.SeatsAvailable > input.TotalSeats {
			c.JSON(400, gin.H{"error": "Available seats cannot exceed total seats"})
			return
		}
		if input.Price < 0 {
			c.JSON(400, gin.H{"error": "Price cannot be negative"})
			return
		}
		if input.DepartureTime.Before(time.Now()) {
			c.JSON(400, gin.H{"error": "Departure time must be in the future"})
			return
		}

		ride := models.Ride{
			DriverID:           userId,
			Origin:             input.Origin,
			OriginAddress:      input.OriginAddress,
			Destination:        input.Destination,
			DestinationAddress: input.DestinationAddress,
			DepartureTime:      input.DepartureTime,
			ArrivalTime:        input.ArrivalTime,
			Price:              input.Price,
			SeatsAvailable:     input.SeatsAvailable,
			TotalSeats:         input.TotalSeats,
			Description:        input.Description,
			Status:             models.RideStatusUpcoming,
			InstantBooking:     input.InstantBooking,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&ride).Error; err != nil {
				return err
			}
			prefs := models.DefaultPreferences(ride.ID)
			if input.Preferences != nil {
				prefs = input.Preferences
				prefs.RideID = ride.ID
			}
			return tx.Create(prefs).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		db.Preload("Driver").Preload("Preferences").First(&ride, ride.ID)
		c.JSON(201, rideView(&ride))
	}
}

// applyRideFilters builds the search query from request parameters
func applyRideFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if origin := c.Query("origin"); origin != "" {
		query = query.Where("LOWER(origin) LIKE ?", "%"+strings.ToLower(origin)+"%")
	}
	if destination := c.Query("destination"); destination != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(destination)+"%")
	}
	if date := c.Query("departureDate"); date != "" {
		if day, err := time.Parse("2006-01-02", date); err == nil {
			query = query.Where("departure_time >= ? AND departure_time < ?", day, day.Add(24*time.Hour))
		}
	}
	if after := c.Query("departureDateAfter"); after != "" {
		if day, err := time.Parse("2006-01-02", after); err == nil {
			query = query.Where("departure_time >= ?", day)
		}
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		query = query.Where("price <= ?", maxPrice)
	}
	if minSeats := c.Query("minSeats"); minSeats != "" {
		query = query.Where("seats_available >= ?", minSeats)
	}
	if instant := c.Query("instantBooking"); instant != "" {
		query = query.Where("instant_booking = ?", instant == "true")
	}

	switch c.DefaultQuery("ordering", "-departureTime") {
	case "price":
		query = query.Order("price ASC")
	case "-price":
		query = query.Order("price DESC")
	case "departureTime":
		query = query.Order("departure_time ASC")
	default:
		query = query.Order("departure_time DESC")
	}
	return query
}

// ListRides retrieves rides with optional filters
func ListRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Driver").Preload("Preferences").Model(&models.Ride{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		query = applyRideFilters(c, query)

		var rides []models.Ride
		if err := query.Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		views := make([]gin.H, 0, len(rides))
		for i := range rides {
			views = append(views, rideView(&rides[i]))
		}
		c.JSON(200, views)
	}
}

// SearchRides retrieves upcoming rides matching the filters
func SearchRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Driver").Preload("Preferences").
			Model(&models.Ride{}).
			Where("status = ?", models.RideStatusUpcoming)
		query = applyRideFilters(c, query)

		var rides []models.Ride
		if err := query.Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to search rides"})
			return
		}

		views := make([]gin.H, 0, len(rides))
		for i := range rides {
			views = append(views, rideView(&rides[i]))
		}
		c.JSON(200, views)
	}
}

// GetMyRides retrieves all rides created by the current user
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var rides []models.Ride
		if err := db.Preload("Driver").Preload("Preferences").
			Where("driver_id = ?", userId).
			Order("departure_time DESC").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		views := make([]gin.H, 0, len(rides))
		for i := range rides {
			views = append(views, rideView(&rides[i]))
		}
		c.JSON(200, views)
	}
}

// GetRide retrieves full ride details including the driver's car
func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ride models.Ride
		if err := db.Preload("Driver").Preload("Preferences").
			First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		view := rideView(&ride)

		var car models.Car
		if err := db.Where("user_id = ?", ride.DriverID).First(&car).Error; err == nil {
			view["car"] = car
		}

		c.JSON(200, view)
	}
}

// UpdateRide updates a ride's details (driver only)
func UpdateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var ride models.Ride
		if err := db.Preload("Preferences").First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Only the driver can update this ride"})
			return
		}

		var input struct {
			Origin             *string                 `json:"origin"`
			OriginAddress      *string                 `json:"originAddress"`
			Destination        *string                 `json:"destination"`
			DestinationAddress *string                 `json:"destinationAddress"`
			DepartureTime      *time.Time              `json:"departureTime"`
			ArrivalTime        *time.Time              `json:"arrivalTime"`
			Price              *float64                `json:"price"`
			Description        *string                 `json:"description"`
			InstantBooking     *bool                   `json:"instantBooking"`
			Status             *models.RideStatus      `json:"status"`
			Preferences        *models.RidePreferences `json:"preferences"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Origin != nil {
			ride.Origin = *input.Origin
		}
		if input.OriginAddress != nil {
			ride.OriginAddress = *input.OriginAddress
		}
		if input.Destination != nil {
			ride.Destination = *input.Destination
		}
		if input.DestinationAddress != nil {
			ride.DestinationAddress = *input.DestinationAddress
		}
		if input.DepartureTime != nil {
			ride.DepartureTime = *input.DepartureTime
		}
		if input.ArrivalTime != nil {
			ride.ArrivalTime = input.ArrivalTime
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(400, gin.H{"error": "Price cannot be negative"})
				return
			}
			ride.Price = *input.Price
		}
		if input.Description != nil {
			ride.Description = *input.Description
		}
		if input.InstantBooking != nil {
			ride.InstantBooking = *input.InstantBooking
		}
		if input.Status != nil {
			ride.Status = *input.Status
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&ride).Error; err != nil {
				return err
			}
			if input.Preferences != nil {
				prefs := input.Preferences
				prefs.RideID = ride.ID
				if ride.Preferences != nil {
					prefs.ID = ride.Preferences.ID
				}
				return tx.Save(prefs).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to update ride"})
			return
		}

		db.Preload("Driver").Preload("Preferences").First(&ride, ride.ID)
		c.JSON(200, rideView(&ride))
	}
}

// CancelRide soft-cancels a ride and notifies passengers holding
// accepted bookings. The bookings themselves are left untouched.
func CancelRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var ride models.Ride
		if err := db.Preload("Driver").First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Only the driver can cancel this ride"})
			return
		}
		if ride.Status == models.RideStatusCancelled {
			c.JSON(409, gin.H{"error": "Ride is already cancelled"})
			return
		}

		var notifications []models.Notification
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Ride{}).Where("id = ?", ride.ID).
				Update("status", models.RideStatusCancelled).Error; err != nil {
				return err
			}

			var accepted []models.Booking
			if err := tx.Where("ride_id = ? AND status = ?", ride.ID, models.BookingStatusAccepted).
				Find(&accepted).Error; err != nil {
				return err
			}

			for i := range accepted {
				rideID := ride.ID
				bookingID := accepted[i].ID
				driverID := ride.DriverID
				n := models.Notification{
					RecipientID: accepted[i].PassengerID,
					SenderID:    &driverID,
					Type:        models.NotificationRideCancelled,
					Title:       "Ride Cancelled",
					Message:     "The ride from " + ride.Origin + " to " + ride.Destination + " has been cancelled by the driver.",
					RideID:      &rideID,
					BookingID:   &bookingID,
				}
				if err := tx.Create(&n).Error; err != nil {
					return err
				}
				notifications = append(notifications, n)
			}
			return nil
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}

		for i := range notifications {
			hub.NotificationCreated(&notifications[i])
			if services.RedisClient != nil {
				services.InvalidateUnreadCount(c.Request.Context(), notifications[i].RecipientID)
			}
		}

		c.JSON(200, gin.H{"message": "Ride cancelled successfully"})
	}
}
