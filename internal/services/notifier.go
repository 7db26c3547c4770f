package services

import (
	"errors"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/sharewheels/carpool-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Notifier persists notifications and pushes them to live connections.
// Persistence comes first: an offline recipient finds the notification via
// the unread listing, a connected one additionally gets a live push.
type Notifier struct {
	db  *gorm.DB
	hub *Hub
	log *logger.Logger
}

func NewNotifier(db *gorm.DB, hub *Hub, log *logger.Logger) *Notifier {
	return &Notifier{db: db, hub: hub, log: log}
}

// Notify creates a notification and best-effort pushes it to the recipient.
// A failed live push never fails the call.
func (n *Notifier) Notify(recipientID, senderID, rideID uint, message string, typ models.NotificationType) (*models.Notification, error) {
	notification := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		RideID:      rideID,
		Message:     message,
		Type:        typ,
	}

	// Persistence is the reliable half of dispatch; its failure is worth a
	// log line even when the producing operation carries on.
	if err := n.db.Create(&notification).Error; err != nil {
		n.log.Error("failed to persist notification",
			logger.Uint("recipientId", recipientID),
			logger.Uint("rideId", rideID),
			logger.Err(err))
		return nil, err
	}
	metrics.NotificationsDispatched.Inc()

	// Reload with the sender preloaded so the live event matches what the
	// REST listing returns.
	if err := n.db.Preload("Sender").First(&notification, notification.ID).Error; err != nil {
		n.log.Warn("failed to reload notification for push", logger.Err(err))
		notification.Sender = models.User{}
	}

	delivered := n.hub.SendEventToUser(recipientID, Event{
		Type: "notification",
		Data: notification,
	})
	if delivered > 0 {
		metrics.NotificationsPushed.Inc()
	}

	return &notification, nil
}

// ListNotifications returns a recipient's notifications, unread first, newest
// first within each group.
func (n *Notifier) ListNotifications(recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.db.Preload("Sender").Preload("Ride").
		Where("recipient_id = ?", recipientID).
		Order("read ASC, created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// ListUnread returns a recipient's unread notifications, newest first.
func (n *Notifier) ListUnread(recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.db.Preload("Sender").Preload("Ride").
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkRead marks one notification read. Marking an already-read notification
// succeeds with no state change. The recipient scope prevents one user from
// touching another's notifications.
func (n *Notifier) MarkRead(notificationID, recipientID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := n.db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	if notification.Read {
		return &notification, nil
	}

	if err := n.db.Model(&notification).UpdateColumn("read", true).Error; err != nil {
		return nil, err
	}
	notification.Read = true
	return &notification, nil
}

// MarkAllRead marks every unread notification for the recipient in a single
// statement, so no partial mark is ever visible.
func (n *Notifier) MarkAllRead(recipientID uint) error {
	return n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		UpdateColumn("read", true).Error
}
