package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/reviews"
	"github.com/ridelink/ridelink-backend/internal/services"
)

// ReviewService is the creation surface the handlers depend on.
type ReviewService interface {
	Submit(ctx context.Context, reviewerID uint, in reviews.SubmitInput) (*models.Review, error)
}

func reviewView(r *models.Review) gin.H {
	view := gin.H{
		"id":         r.ID,
		"rideId":     r.RideID,
		"reviewerId": r.ReviewerID,
		"revieweeId": r.RevieweeID,
		"rating":     r.Rating,
		"comment":    r.Comment,
		"createdAt":  r.CreatedAt,
	}
	if r.Reviewer.ID != 0 {
		view["reviewer"] = publicUserView(&r.Reviewer)
	}
	if r.Reviewee.ID != 0 {
		view["reviewee"] = publicUserView(&r.Reviewee)
	}
	return view
}

// CreateReview submits a review of a ride participant
func CreateReview(svc ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID     uint   `json:"rideId" binding:"required"`
			RevieweeID uint   `json:"revieweeId" binding:"required"`
			Rating     int    `json:"rating" binding:"required"`
			Comment    string `json:"comment"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		review, err := svc.Submit(c.Request.Context(), userId, reviews.SubmitInput{
			RideID:     input.RideID,
			RevieweeID: input.RevieweeID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// The reviewee's average rating just changed
		if services.RedisClient != nil {
			services.InvalidateUserStats(c.Request.Context(), input.RevieweeID)
		}

		c.JSON(201, reviewView(review))
	}
}

// ListReviews retrieves reviews with optional filters
func ListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Reviewer").Preload("Reviewee").Model(&models.Review{})

		if user := c.Query("user"); user != "" {
			query = query.Where("reviewee_id = ?", user)
		}
		if reviewer := c.Query("reviewer"); reviewer != "" {
			query = query.Where("reviewer_id = ?", reviewer)
		}
		if ride := c.Query("ride"); ride != "" {
			query = query.Where("ride_id = ?", ride)
		}

		var results []models.Review
		if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, reviewView(&results[i]))
		}
		c.JSON(200, views)
	}
}

// GetReview retrieves a single review
func GetReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var review models.Review
		if err := db.Preload("Reviewer").Preload("Reviewee").
			First(&review, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(200, reviewView(&review))
	}
}

// UserReviews retrieves the reviews received by a user
func UserReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var results []models.Review
		if err := db.Preload("Reviewer").Preload("Reviewee").
			Where("reviewee_id = ?", c.Param("id")).
			Order("created_at DESC").
			Find(&results).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, reviewView(&results[i]))
		}
		c.JSON(200, views)
	}
}

// RideReviews retrieves the reviews attached to a ride
func RideReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var results []models.Review
		if err := db.Preload("Reviewer").Preload("Reviewee").
			Where("ride_id = ?", c.Param("id")).
			Order("created_at DESC").
			Find(&results).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, reviewView(&results[i]))
		}
		c.JSON(200, views)
	}
}
