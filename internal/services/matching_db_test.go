package services

import (
	"testing"
	"time"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRides(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, "driver")

	mkRide := func(from, to string, seats int, start time.Time) *models.Ride {
		ride := &models.Ride{
			CreatorID:        creator.ID,
			SeatsTotal:       seats,
			AvailableSeats:   seats,
			OriginPlace:      from,
			DestinationPlace: to,
			StartTime:        start,
			EndTime:          start.Add(3 * time.Hour),
			Status:           models.RideStatusPending,
		}
		require.NoError(t, db.Create(ride).Error)
		return ride
	}

	day := mustLocalTime(2026, 9, 10, 0)
	match := mkRide("Accra Central", "Kumasi", 3, day.Add(8*time.Hour))
	mkRide("Accra Central", "Kumasi", 1, day.Add(9*time.Hour))                  // too few seats
	mkRide("Takoradi", "Kumasi", 3, day.Add(8*time.Hour))                       // wrong origin
	mkRide("Accra Central", "Kumasi", 3, day.AddDate(0, 0, 3).Add(8*time.Hour)) // wrong day

	q := &SearchQuery{From: "accra", To: "KUMASI", Date: day, MinSeats: 2}

	rides, err := FindRides(db, q)
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, match.ID, rides[0].ID)
	assert.Equal(t, creator.ID, rides[0].Creator.ID, "creator comes preloaded")
}
