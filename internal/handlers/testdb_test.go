package handlers

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the application schema,
// pinned to a single connection so the database outlives individual pool
// connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Rating{},
		&models.Notification{},
		&models.Payment{},
		&models.ChatMessage{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:       name,
		Email:      name + "@example.com",
		TrustScore: models.DefaultTrustScore,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRide(t *testing.T, db *gorm.DB, creatorID uint, seats int) *models.Ride {
	t.Helper()
	ride := &models.Ride{
		CreatorID:        creatorID,
		SeatsTotal:       seats,
		AvailableSeats:   seats,
		OriginPlace:      "Accra",
		DestinationPlace: "Kumasi",
		StartTime:        time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local),
		EndTime:          time.Date(2026, 9, 1, 11, 0, 0, 0, time.Local),
		Status:           models.RideStatusPending,
		Price:            40,
	}
	require.NoError(t, db.Create(ride).Error)
	return ride
}
