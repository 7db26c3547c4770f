package models

import (
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeBooking    NotificationType = "booking"
	NotificationTypeRideUpdate NotificationType = "ride_update"
	NotificationTypeMessage    NotificationType = "message"
)

// Notification is archival: rows are created by event producers and only ever
// mutated by mark-read operations, never deleted.
type Notification struct {
	gorm.Model
	RecipientID uint             `json:"recipientId" gorm:"not null;index"`
	SenderID    uint             `json:"senderId" gorm:"not null"`
	Sender      User             `json:"sender"`
	RideID      uint             `json:"rideId" gorm:"not null"`
	Ride        Ride             `json:"ride"`
	Message     string           `json:"message" gorm:"not null"`
	Type        NotificationType `json:"type" gorm:"not null"`
	Read        bool             `json:"read" gorm:"not null;default:false"`
}

func (Notification) TableName() string {
	return "notifications"
}
