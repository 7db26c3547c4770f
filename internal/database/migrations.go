package database

import (
	"github.com/sharewheels/carpool-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Rating{},
		&models.Notification{},
		&models.Payment{},
		&models.ChatMessage{},
	)
	if err != nil {
		return err
	}

	// Seat counts can never go negative; the guarded decrement relies on this
	// as a last line of defense.
	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_available_seats_check`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_available_seats_check CHECK (available_seats >= 0)`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('pending', 'active', 'completed', 'canceled'))`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE ratings DROP CONSTRAINT IF EXISTS ratings_stars_check`)
	if err := db.Exec(`ALTER TABLE ratings ADD CONSTRAINT ratings_stars_check CHECK (stars BETWEEN 1 AND 5)`).Error; err != nil {
		return err
	}

	return nil
}
