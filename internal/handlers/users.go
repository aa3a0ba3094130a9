package handlers

import (
	"context"
	"math"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/services"
)

// UserStats are the aggregate fields computed from the other ledgers
// rather than stored on the profile.
type UserStats struct {
	Rating        float64 `json:"rating"`
	ReviewsCount  int64   `json:"reviewsCount"`
	TotalEarnings float64 `json:"totalEarnings"`
	RidesGiven    int64   `json:"ridesGiven"`
	RidesTaken    int64   `json:"ridesTaken"`
}

// computeUserStats aggregates on demand, with a short-lived Redis cache
// in front since profile pages hit this repeatedly.
func computeUserStats(ctx context.Context, db *gorm.DB, userID uint) (*UserStats, error) {
	var stats UserStats
	if services.RedisClient != nil {
		if hit, err := services.GetCachedUserStats(ctx, userID, &stats); err == nil && hit {
			return &stats, nil
		}
	}

	var ratingRow struct {
		Avg   float64
		Count int64
	}
	if err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("reviewee_id = ?", userID).
		Scan(&ratingRow).Error; err != nil {
		return nil, err
	}
	stats.Rating = math.Round(ratingRow.Avg*10) / 10
	stats.ReviewsCount = ratingRow.Count

	if err := db.Model(&models.Booking{}).
		Joins("JOIN rides ON rides.id = bookings.ride_id").
		Where("rides.driver_id = ? AND bookings.status = ?", userID, models.BookingStatusAccepted).
		Select("COALESCE(SUM(bookings.seats * rides.price), 0)").
		Scan(&stats.TotalEarnings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Ride{}).
		Where("driver_id = ? AND status <> ?", userID, models.RideStatusCancelled).
		Count(&stats.RidesGiven).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Booking{}).
		Where("passenger_id = ? AND status = ?", userID, models.BookingStatusAccepted).
		Count(&stats.RidesTaken).Error; err != nil {
		return nil, err
	}

	if services.RedisClient != nil {
		services.CacheUserStats(ctx, userID, &stats)
	}
	return &stats, nil
}

// GetProfile retrieves the current user's profile with statistics
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		stats, err := computeUserStats(c.Request.Context(), db, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to compute statistics"})
			return
		}

		c.JSON(200, gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"username":    user.Username,
			"firstName":   user.FirstName,
			"lastName":    user.LastName,
			"fullName":    user.FullName(),
			"avatar":      user.Avatar,
			"bio":         user.Bio,
			"phoneNumber": user.PhoneNumber,
			"location":    user.Location,
			"isVerified":  user.IsVerified,
			"stats":       stats,
		})
	}
}

// UpdateProfile updates the current user's profile information
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			FirstName   *string `json:"firstName"`
			LastName    *string `json:"lastName"`
			Bio         *string `json:"bio"`
			PhoneNumber *string `json:"phoneNumber"`
			Location    *string `json:"location"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Update fields individually to handle empty strings properly
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Bio != nil {
			user.Bio = *input.Bio
		}
		if input.PhoneNumber != nil {
			user.PhoneNumber = *input.PhoneNumber
		}
		if input.Location != nil {
			user.Location = *input.Location
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"username":    user.Username,
			"firstName":   user.FirstName,
			"lastName":    user.LastName,
			"fullName":    user.FullName(),
			"avatar":      user.Avatar,
			"bio":         user.Bio,
			"phoneNumber": user.PhoneNumber,
			"location":    user.Location,
		})
	}
}

// UploadAvatar stores a profile image and saves its URL
func UploadAvatar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "Avatar image is required"})
			return
		}

		url, err := services.UploadImage(file, "avatars")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload avatar"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).Update("avatar", url).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save avatar"})
			return
		}

		c.JSON(200, gin.H{"avatar": url})
	}
}

// GetUser retrieves a public user profile
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		stats, err := computeUserStats(c.Request.Context(), db, user.ID)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to compute statistics"})
			return
		}

		view := publicUserView(&user)
		view["bio"] = user.Bio
		view["location"] = user.Location
		view["rating"] = stats.Rating
		view["reviewsCount"] = stats.ReviewsCount
		view["ridesGiven"] = stats.RidesGiven
		c.JSON(200, view)
	}
}

// GetUserStats retrieves a user's aggregate statistics
func GetUserStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		stats, err := computeUserStats(c.Request.Context(), db, user.ID)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to compute statistics"})
			return
		}

		c.JSON(200, gin.H{
			"id":       user.ID,
			"fullName": user.FullName(),
			"avatar":   user.Avatar,
			"stats":    stats,
		})
	}
}
