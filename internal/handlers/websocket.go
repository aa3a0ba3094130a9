package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ridelink/ridelink-backend/internal/services"
)

// WebSocketHandler upgrades the connection and registers it with the hub
// so committed notifications reach the user without polling
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		services.HandleWebSocket(hub, c.Writer, c.Request, userId)
	}
}
