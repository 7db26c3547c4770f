package models

import (
	"gorm.io/gorm"
)

// ChatMessage is one line of a ride's transcript. Only ride participants
// (creator and passengers) may post; the check lives in the chat handler.
type ChatMessage struct {
	gorm.Model
	RideID   uint   `json:"rideId" gorm:"not null;index"`
	SenderID uint   `json:"senderId" gorm:"not null"`
	Sender   User   `json:"sender"`
	Text     string `json:"text" gorm:"not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
