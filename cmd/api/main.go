package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ridelink/ridelink-backend/internal/bookings"
	"github.com/ridelink/ridelink-backend/internal/database"
	"github.com/ridelink/ridelink-backend/internal/handlers"
	"github.com/ridelink/ridelink-backend/internal/middleware"
	"github.com/ridelink/ridelink-backend/internal/notifications"
	"github.com/ridelink/ridelink-backend/internal/reviews"
	"github.com/ridelink/ridelink-backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle:", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Initialize Redis (optional, aggregates fall back to the database)
	if err := services.InitRedis(); err != nil {
		log.Println("Redis unavailable, caching disabled:", err)
	}

	// Initialize file storage (S3 or local)
	if err := services.InitStorage(); err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Start the WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Wire stores and services
	bookingService := bookings.NewService(bookings.NewStore(db), hub)
	reviewService := reviews.NewService(reviews.NewStore(db))
	notificationService := notifications.NewService(notifications.NewStore(db))

	// Create Gin router
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", os.Getenv("FRONTEND_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Serve locally stored uploads when not using S3
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		router.Static("/uploads", uploadDir)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"clients": hub.ConnectedClients(),
		})
	})

	// Public routes
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", handlers.Register(db))
		auth.POST("/login", handlers.Login(db))
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// User profile
		api.GET("/profile", handlers.GetProfile(db))
		api.PUT("/profile", handlers.UpdateProfile(db))
		api.POST("/profile/avatar", handlers.UploadAvatar(db))
		api.GET("/users/:id", handlers.GetUser(db))
		api.GET("/users/:id/stats", handlers.GetUserStats(db))

		// Car
		api.GET("/profile/car", handlers.GetMyCar(db))
		api.PUT("/profile/car", handlers.UpdateMyCar(db))
		api.POST("/profile/car/image", handlers.UploadCarImage(db))

		// Rides
		api.POST("/rides", handlers.CreateRide(db))
		api.GET("/rides", handlers.ListRides(db))
		api.GET("/rides/search", handlers.SearchRides(db))
		api.GET("/rides/mine", handlers.GetMyRides(db))
		api.GET("/rides/:id", handlers.GetRide(db))
		api.PUT("/rides/:id", handlers.UpdateRide(db))
		api.DELETE("/rides/:id", handlers.CancelRide(db, hub))
		api.GET("/rides/:id/bookings", handlers.GetRideBookings(db))
		api.GET("/rides/:id/reviews", handlers.RideReviews(db))

		// Bookings
		api.POST("/bookings", handlers.CreateBooking(bookingService))
		api.GET("/bookings", handlers.GetMyBookings(db))
		api.GET("/bookings/:id", handlers.GetBooking(db))
		api.PATCH("/bookings/:id/accept", handlers.AcceptBooking(bookingService))
		api.PATCH("/bookings/:id/decline", handlers.DeclineBooking(bookingService))
		api.DELETE("/bookings/:id", handlers.CancelBooking(bookingService))

		// Reviews
		api.POST("/reviews", handlers.CreateReview(reviewService))
		api.GET("/reviews", handlers.ListReviews(db))
		api.GET("/reviews/:id", handlers.GetReview(db))
		api.GET("/users/:id/reviews", handlers.UserReviews(db))

		// Notifications
		api.GET("/notifications", handlers.ListNotifications(notificationService))
		api.GET("/notifications/unread-count", handlers.UnreadNotificationsCount(notificationService))
		api.GET("/notifications/:id", handlers.GetNotification(notificationService))
		api.PATCH("/notifications/:id/read", handlers.MarkNotificationRead(notificationService))
		api.POST("/notifications/mark-all-read", handlers.MarkAllNotificationsRead(notificationService))

		// WebSocket
		api.GET("/ws", handlers.WebSocketHandler(hub))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
