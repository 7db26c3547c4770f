package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/services"
	"gorm.io/gorm"
)

func GetNotifications(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		if c.Query("unread") == "true" {
			notifications, err := notifier.ListUnread(userID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
				return
			}
			c.JSON(200, gin.H{"success": true, "notifications": notifications})
			return
		}

		notifications, err := notifier.ListNotifications(userID)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(200, gin.H{"success": true, "notifications": notifications})
	}
}

func MarkNotificationRead(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		notificationID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		notification, err := notifier.MarkRead(notificationID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Notification not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to mark notification read"})
			return
		}
		c.JSON(200, gin.H{"success": true, "notification": notification})
	}
}

func MarkAllNotificationsRead(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		if err := notifier.MarkAllRead(userID); err != nil {
			c.JSON(500, gin.H{"error": "Failed to mark notifications read"})
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
