package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/pkg/utils"
)

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	PhoneNumber     string `json:"phoneNumber"`
	Location        string `json:"location"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Password != input.PasswordConfirm {
			c.JSON(400, gin.H{"error": "Password fields didn't match"})
			return
		}

		user := models.User{
			Email:       input.Email,
			Username:    input.Username,
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			PhoneNumber: input.PhoneNumber,
			Location:    input.Location,
		}
		if err := user.SetPassword(input.Password); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(400, gin.H{"error": "A user with this email or username already exists"})
			return
		}

		c.JSON(201, gin.H{
			"message": "User registered successfully. Please login.",
			"user":    publicUserView(&user),
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"username":    user.Username,
				"fullName":    user.FullName(),
				"phoneNumber": user.PhoneNumber,
				"location":    user.Location,
				"isVerified":  user.IsVerified,
			},
		})
	}
}
