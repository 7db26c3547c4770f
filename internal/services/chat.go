package services

import (
	"errors"

	"github.com/sharewheels/carpool-backend/internal/models"
	"gorm.io/gorm"
)

// PostChatMessage is the single path for ride chat, shared by the HTTP
// endpoint and the websocket inbound handler: participant check, persist,
// fan out to the ride room, notify the other participants.
func PostChatMessage(db *gorm.DB, hub *Hub, notifier *Notifier, rideID, senderID uint, text string) (*models.ChatMessage, error) {
	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	if ride.CreatorID != senderID && !ride.HasPassenger(senderID) {
		return nil, ErrNotParticipant
	}

	message := models.ChatMessage{
		RideID:   rideID,
		SenderID: senderID,
		Text:     text,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, err
	}
	db.Preload("Sender").First(&message, message.ID)

	hub.SendEventToRide(rideID, Event{Type: "chat_message", Data: message})

	// Everyone on the ride except the sender gets a durable notification;
	// the room push above only reaches currently connected clients.
	notice := "New message on the ride to " + ride.DestinationPlace
	if ride.CreatorID != senderID {
		notifier.Notify(ride.CreatorID, senderID, rideID, notice, models.NotificationTypeMessage)
	}
	for _, p := range ride.Passengers {
		if p.ID == senderID {
			continue
		}
		notifier.Notify(p.ID, senderID, rideID, notice, models.NotificationTypeMessage)
	}

	return &message, nil
}
