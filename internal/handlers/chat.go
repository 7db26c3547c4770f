package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/internal/services"
	"gorm.io/gorm"
)

type SendMessageInput struct {
	Text string `json:"text" binding:"required"`
}

// rideParticipant reports whether a user is the creator or a passenger.
func rideParticipant(ride *models.Ride, userID uint) bool {
	return ride.CreatorID == userID || ride.HasPassenger(userID)
}

// GetRideMessages returns the chat transcript for a ride, oldest first.
func GetRideMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var ride models.Ride
		if err := db.Preload("Passengers").First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if !rideParticipant(&ride, userID) {
			c.JSON(403, gin.H{"error": "Only ride participants can view messages"})
			return
		}

		var messages []models.ChatMessage
		if err := db.Preload("Sender").
			Where("ride_id = ?", ride.ID).
			Order("id ASC").Find(&messages).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}
		c.JSON(200, gin.H{"success": true, "messages": messages})
	}
}

// SendRideMessage is the HTTP fallback for clients without a live socket;
// both paths go through services.PostChatMessage.
func SendRideMessage(db *gorm.DB, hub *services.Hub, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var input SendMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "text is required"})
			return
		}

		message, err := services.PostChatMessage(db, hub, notifier, rideID, userID, input.Text)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrNotParticipant):
				c.JSON(403, gin.H{"error": "Only ride participants can send messages"})
			default:
				c.JSON(500, gin.H{"error": "Failed to send message"})
			}
			return
		}

		c.JSON(201, gin.H{"success": true, "message": message})
	}
}
