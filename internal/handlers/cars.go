package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/services"
)

// GetMyCar retrieves the current user's car, creating an empty record
// on first access so the profile form always has something to edit
func GetMyCar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var car models.Car
		err := db.Where("user_id = ?", userId).First(&car).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			car = models.Car{UserID: userId}
			if err := db.Create(&car).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to create car record"})
				return
			}
		} else if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch car"})
			return
		}

		c.JSON(200, car)
	}
}

// UpdateMyCar updates the current user's car details
func UpdateMyCar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Make         *string `json:"make"`
			Model        *string `json:"model"`
			Color        *string `json:"color"`
			Year         *int    `json:"year"`
			LicensePlate *string `json:"licensePlate"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var car models.Car
		if err := db.Where("user_id = ?", userId).First(&car).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(500, gin.H{"error": "Failed to fetch car"})
				return
			}
			car = models.Car{UserID: userId}
		}

		if input.Make != nil {
			car.Make = *input.Make
		}
		if input.Model != nil {
			car.CarModel = *input.Model
		}
		if input.Color != nil {
			car.Color = *input.Color
		}
		if input.Year != nil {
			car.Year = input.Year
		}
		if input.LicensePlate != nil {
			car.LicensePlate = *input.LicensePlate
		}

		if err := db.Save(&car).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update car"})
			return
		}

		c.JSON(200, car)
	}
}

// UploadCarImage stores a car photo and saves its URL
func UploadCarImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "Car image is required"})
			return
		}

		url, err := services.UploadImage(file, "cars")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image"})
			return
		}

		var car models.Car
		if err := db.Where("user_id = ?", userId).First(&car).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(500, gin.H{"error": "Failed to fetch car"})
				return
			}
			car = models.Car{UserID: userId}
		}
		car.CarImage = url

		if err := db.Save(&car).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image"})
			return
		}

		c.JSON(200, gin.H{"carImage": url})
	}
}
