package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCanceled  RideStatus = "canceled"
)

// RideTags is the fixed tag vocabulary a ride may carry.
var RideTags = []string{"AC", "Music", "Pet Friendly", "No Smoking", "Ladies Only", "Express Route"}

func IsValidRideTag(tag string) bool {
	for _, t := range RideTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Ride is a single offered carpool trip. The seat invariant
// AvailableSeats + len(Passengers) == SeatsTotal holds at all times; seat
// changes go through guarded single-row updates, never read-modify-write.
type Ride struct {
	gorm.Model
	CreatorID  uint   `json:"creatorId" gorm:"not null;index"`
	Creator    User   `json:"creator"`
	Passengers []User `json:"passengers,omitempty" gorm:"many2many:ride_passengers"`

	SeatsTotal     int `json:"seatsTotal" gorm:"not null"`
	AvailableSeats int `json:"availableSeats" gorm:"not null"`

	OriginPlace      string   `json:"originPlace" gorm:"not null"`
	OriginLat        *float64 `json:"originLat,omitempty"`
	OriginLng        *float64 `json:"originLng,omitempty"`
	DestinationPlace string   `json:"destinationPlace" gorm:"not null"`
	DestinationLat   *float64 `json:"destinationLat,omitempty"`
	DestinationLng   *float64 `json:"destinationLng,omitempty"`

	StartTime time.Time  `json:"startTime" gorm:"not null;index"`
	EndTime   time.Time  `json:"endTime" gorm:"not null"`
	Status    RideStatus `json:"status" gorm:"not null;default:'pending'"`
	Price     float64    `json:"price" gorm:"not null;default:0"`

	Tags pq.StringArray `json:"tags" gorm:"type:text[]"`

	VehicleNumber string `json:"vehicleNumber"`
	VehicleModel  string `json:"vehicleModel"`

	// CarbonSavedRide is the per-passenger CO2 estimate in grams, set once
	// when the ride completes.
	CarbonSavedRide float64 `json:"carbonSavedRide" gorm:"not null;default:0"`
}

func (Ride) TableName() string {
	return "rides"
}

// HasCoordinates reports whether both endpoints carry a geo position.
func (r *Ride) HasCoordinates() bool {
	return r.OriginLat != nil && r.OriginLng != nil &&
		r.DestinationLat != nil && r.DestinationLng != nil
}

// IsOpen reports whether the ride still accepts passengers.
func (r *Ride) IsOpen() bool {
	return r.Status == RideStatusPending || r.Status == RideStatusActive
}

// HasPassenger reports whether the given user already holds a seat.
func (r *Ride) HasPassenger(userID uint) bool {
	for _, p := range r.Passengers {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// CanTransition reports whether a status change is allowed. Transitions are
// monotonic: pending -> active -> completed, with canceled reachable only
// from pending or active.
func (r *Ride) CanTransition(to RideStatus) bool {
	switch to {
	case RideStatusActive:
		return r.Status == RideStatusPending
	case RideStatusCompleted:
		return r.Status == RideStatusPending || r.Status == RideStatusActive
	case RideStatusCanceled:
		return r.Status == RideStatusPending || r.Status == RideStatusActive
	default:
		return false
	}
}
