package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ridelink/ridelink-backend/internal/models"
	"github.com/ridelink/ridelink-backend/internal/notifications"
	"github.com/ridelink/ridelink-backend/internal/services"
)

func notificationView(n *models.Notification) gin.H {
	view := gin.H{
		"id":        n.ID,
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"rideId":    n.RideID,
		"bookingId": n.BookingID,
		"isRead":    n.IsRead,
		"readAt":    n.ReadAt,
		"createdAt": n.CreatedAt,
	}
	if n.Sender != nil && n.Sender.ID != 0 {
		view["sender"] = publicUserView(n.Sender)
	}
	return view
}

// ListNotifications retrieves the current user's notifications,
// optionally filtered by type or read state
func ListNotifications(svc *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		filter := notifications.Filter{Type: c.Query("type")}
		if isRead := c.Query("isRead"); isRead != "" {
			read := isRead == "true"
			filter.IsRead = &read
		}

		results, err := svc.List(c.Request.Context(), userId, filter)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		views := make([]gin.H, 0, len(results))
		for i := range results {
			views = append(views, notificationView(&results[i]))
		}
		c.JSON(200, views)
	}
}

// GetNotification retrieves one of the current user's notifications
func GetNotification(svc *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid notification ID"})
			return
		}

		n, err := svc.Get(c.Request.Context(), uint(id), userId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, notificationView(n))
	}
}

// MarkNotificationRead acknowledges a single notification
func MarkNotificationRead(svc *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid notification ID"})
			return
		}

		n, err := svc.MarkRead(c.Request.Context(), uint(id), userId)
		if err != nil {
			respondError(c, err)
			return
		}

		if services.RedisClient != nil {
			services.InvalidateUnreadCount(c.Request.Context(), userId)
		}

		c.JSON(200, notificationView(n))
	}
}

// MarkAllNotificationsRead acknowledges all of the current user's
// unread notifications and reports how many were affected
func MarkAllNotificationsRead(svc *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		count, err := svc.MarkAllRead(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to mark notifications as read"})
			return
		}

		if services.RedisClient != nil {
			services.InvalidateUnreadCount(c.Request.Context(), userId)
		}

		c.JSON(200, gin.H{"markedRead": count})
	}
}

// UnreadNotificationsCount returns the badge count, served from the
// short-lived cache when possible
func UnreadNotificationsCount(svc *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		ctx := c.Request.Context()

		if services.RedisClient != nil {
			if count, hit, err := services.GetCachedUnreadCount(ctx, userId); err == nil && hit {
				c.JSON(200, gin.H{"unreadCount": count})
				return
			}
		}

		count, err := svc.UnreadCount(ctx, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to count notifications"})
			return
		}

		if services.RedisClient != nil {
			services.CacheUnreadCount(ctx, userId, count)
		}

		c.JSON(200, gin.H{"unreadCount": count})
	}
}
