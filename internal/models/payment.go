package models

import (
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	gorm.Model
	RideID     uint          `json:"rideId" gorm:"not null;index"`
	Ride       Ride          `json:"ride"`
	PayerID    uint          `json:"payerId" gorm:"not null"`
	Payer      User          `json:"payer"`
	Amount     float64       `json:"amount" gorm:"not null"`
	Currency   string        `json:"currency" gorm:"not null;default:'USD'"`
	PaymentRef string        `json:"paymentRef" gorm:"uniqueIndex;not null"`
	Status     PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	Method     string        `json:"method" gorm:"not null;default:'card'"`
}

func (Payment) TableName() string {
	return "payments"
}
