package services

import (
	"testing"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func openRide(creatorID uint, seats int) *models.Ride {
	r := &models.Ride{
		CreatorID:      creatorID,
		SeatsTotal:     seats,
		AvailableSeats: seats,
		Status:         models.RideStatusPending,
	}
	r.ID = 1
	return r
}

func TestCheckJoinPreconditions(t *testing.T) {
	t.Run("open ride with seats accepts a stranger", func(t *testing.T) {
		assert.NoError(t, CheckJoinPreconditions(openRide(1, 3), 2))
	})

	t.Run("creator cannot join own ride", func(t *testing.T) {
		assert.ErrorIs(t, CheckJoinPreconditions(openRide(1, 3), 1), ErrSelfJoin)
	})

	t.Run("double join rejected", func(t *testing.T) {
		ride := openRide(1, 3)
		passenger := models.User{}
		passenger.ID = 2
		ride.Passengers = append(ride.Passengers, passenger)

		assert.ErrorIs(t, CheckJoinPreconditions(ride, 2), ErrAlreadyJoined)
	})

	t.Run("full ride rejected", func(t *testing.T) {
		ride := openRide(1, 1)
		ride.AvailableSeats = 0
		assert.ErrorIs(t, CheckJoinPreconditions(ride, 2), ErrRideFull)
	})

	t.Run("terminal statuses rejected", func(t *testing.T) {
		for _, status := range []models.RideStatus{models.RideStatusCompleted, models.RideStatusCanceled} {
			ride := openRide(1, 3)
			ride.Status = status
			assert.ErrorIs(t, CheckJoinPreconditions(ride, 2), ErrRideClosed)
		}
	})

	t.Run("active ride still accepts joins", func(t *testing.T) {
		ride := openRide(1, 3)
		ride.Status = models.RideStatusActive
		assert.NoError(t, CheckJoinPreconditions(ride, 2))
	})

	t.Run("self join reported before full", func(t *testing.T) {
		ride := openRide(1, 1)
		ride.AvailableSeats = 0
		assert.ErrorIs(t, CheckJoinPreconditions(ride, 1), ErrSelfJoin)
	})
}
