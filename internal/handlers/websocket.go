package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/services"
)

// WebSocket upgrades the connection and hands it to the hub. Authentication
// already ran; browsers pass the token as a query parameter since they cannot
// set headers on a websocket handshake.
func WebSocket(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
