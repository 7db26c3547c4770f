package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRideStatusTransitions(t *testing.T) {
	cases := []struct {
		from    RideStatus
		to      RideStatus
		allowed bool
	}{
		{RideStatusPending, RideStatusActive, true},
		{RideStatusPending, RideStatusCompleted, true},
		{RideStatusPending, RideStatusCanceled, true},
		{RideStatusActive, RideStatusCompleted, true},
		{RideStatusActive, RideStatusCanceled, true},
		{RideStatusActive, RideStatusActive, false},
		{RideStatusCompleted, RideStatusActive, false},
		{RideStatusCompleted, RideStatusCanceled, false},
		{RideStatusCanceled, RideStatusActive, false},
		{RideStatusCanceled, RideStatusCompleted, false},
		{RideStatusCompleted, RideStatusPending, false},
	}

	for _, tc := range cases {
		ride := Ride{Status: tc.from}
		assert.Equal(t, tc.allowed, ride.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestRideIsOpen(t *testing.T) {
	assert.True(t, (&Ride{Status: RideStatusPending}).IsOpen())
	assert.True(t, (&Ride{Status: RideStatusActive}).IsOpen())
	assert.False(t, (&Ride{Status: RideStatusCompleted}).IsOpen())
	assert.False(t, (&Ride{Status: RideStatusCanceled}).IsOpen())
}

func TestRideHasPassenger(t *testing.T) {
	passenger := User{}
	passenger.ID = 7
	ride := Ride{Passengers: []User{passenger}}

	assert.True(t, ride.HasPassenger(7))
	assert.False(t, ride.HasPassenger(8))
}

func TestRideHasCoordinates(t *testing.T) {
	lat, lng := 5.6037, -0.1870
	full := Ride{OriginLat: &lat, OriginLng: &lng, DestinationLat: &lat, DestinationLng: &lng}
	partial := Ride{OriginLat: &lat, OriginLng: &lng}

	assert.True(t, full.HasCoordinates())
	assert.False(t, partial.HasCoordinates())
	assert.False(t, (&Ride{}).HasCoordinates())
}

func TestIsValidRideTag(t *testing.T) {
	for _, tag := range RideTags {
		assert.True(t, IsValidRideTag(tag))
	}
	assert.False(t, IsValidRideTag("Turbo"))
	assert.False(t, IsValidRideTag("ac"), "tags are case sensitive")
	assert.False(t, IsValidRideTag(""))
}
