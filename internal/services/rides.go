package services

import (
	"errors"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/sharewheels/carpool-backend/pkg/utils"
	"gorm.io/gorm"
)

var openStatuses = []models.RideStatus{models.RideStatusPending, models.RideStatusActive}

// CheckJoinPreconditions validates a join attempt against a loaded ride.
// It is a pure read; the authoritative guard is the atomic update in JoinRide,
// which re-checks seat count and status under the database's serialization.
func CheckJoinPreconditions(ride *models.Ride, userID uint) error {
	if ride.CreatorID == userID {
		return ErrSelfJoin
	}
	if ride.HasPassenger(userID) {
		return ErrAlreadyJoined
	}
	if !ride.IsOpen() {
		return ErrRideClosed
	}
	if ride.AvailableSeats <= 0 {
		return ErrRideFull
	}
	return nil
}

// JoinRide atomically appends a passenger and decrements the seat count.
// Appending the passenger row and decrementing available_seats happen in one
// transaction; the decrement is guarded so two concurrent joins on the last
// seat resolve to exactly one success and one ErrRideFull.
//
// Joining never activates the ride: the pending -> active transition is
// driven by the first completed payment (see RecordPayment).
func JoinRide(db *gorm.DB, rideID, userID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if err := CheckJoinPreconditions(&ride, userID); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ride{}).
			Where("id = ? AND available_seats > 0 AND status IN ?", rideID, openStatuses).
			UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRideFull
		}

		// The join table's composite primary key rejects duplicate joins
		// that race past the precondition read.
		if err := tx.Exec(
			"INSERT INTO ride_passengers (ride_id, user_id) VALUES (?, ?)",
			rideID, userID,
		).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Creator").Preload("Passengers").First(&ride, rideID).Error; err != nil {
		return nil, err
	}
	return &ride, nil
}

// LeaveRide is the inverse of JoinRide with the same atomicity: the passenger
// row and the seat increment change together or not at all.
func LeaveRide(db *gorm.DB, rideID, userID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	if !ride.IsOpen() {
		return nil, ErrRideClosed
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"DELETE FROM ride_passengers WHERE ride_id = ? AND user_id = ?",
			rideID, userID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotAPassenger
		}

		return tx.Model(&models.Ride{}).
			Where("id = ?", rideID).
			UpdateColumn("available_seats", gorm.Expr("available_seats + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		return nil, err
	}
	return &ride, nil
}

// CompleteRide marks a ride completed and credits carbon savings exactly
// once. Only the creator may complete; re-invocation fails with
// ErrAlreadyCompleted without double-crediting.
func CompleteRide(db *gorm.DB, log *logger.Logger, rideID, actorID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if ride.CreatorID != actorID {
		return nil, ErrNotRideCreator
	}
	if ride.Status == models.RideStatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	var distanceKm float64
	if ride.HasCoordinates() {
		distanceKm = utils.HaversineDistance(
			*ride.OriginLat, *ride.OriginLng,
			*ride.DestinationLat, *ride.DestinationLng,
		)
	} else {
		log.Warn("ride has no coordinates, carbon savings default to zero",
			logger.Uint("rideId", rideID))
	}
	carbonPerPassenger := utils.CarbonSavedPerPassenger(distanceKm)

	passengerIDs := make([]uint, 0, len(ride.Passengers))
	for _, p := range ride.Passengers {
		passengerIDs = append(passengerIDs, p.ID)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// The guarded status flip is the idempotency barrier: a concurrent
		// or repeated completion sees zero rows affected and credits nothing.
		res := tx.Model(&models.Ride{}).
			Where("id = ? AND status <> ?", rideID, models.RideStatusCompleted).
			Updates(map[string]interface{}{
				"status":            models.RideStatusCompleted,
				"carbon_saved_ride": carbonPerPassenger,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		if len(passengerIDs) > 0 && carbonPerPassenger > 0 {
			if err := tx.Model(&models.User{}).
				Where("id IN ?", passengerIDs).
				Updates(map[string]interface{}{
					"carbon_saved_weekly":  gorm.Expr("carbon_saved_weekly + ?", carbonPerPassenger),
					"carbon_saved_monthly": gorm.Expr("carbon_saved_monthly + ?", carbonPerPassenger),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Trust recomputation is best-effort and never unwinds the completion.
	RecomputeTrustScore(db, log, ride.CreatorID)
	for _, id := range passengerIDs {
		RecomputeTrustScore(db, log, id)
	}

	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		return nil, err
	}
	return &ride, nil
}

// RateRide records a passenger's rating of the ride creator and refreshes the
// creator's mean stars. One rating per (rater, ride).
func RateRide(db *gorm.DB, log *logger.Logger, rideID, raterID uint, stars int) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidStars
	}

	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if !ride.HasPassenger(raterID) {
		return nil, ErrNotAPassenger
	}

	rating := models.Rating{
		RaterID:     raterID,
		RatedUserID: ride.CreatorID,
		RideID:      rideID,
		Stars:       stars,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRated
			}
			return err
		}

		// Unweighted arithmetic mean over every rating the user has received.
		return tx.Model(&models.User{}).
			Where("id = ?", ride.CreatorID).
			UpdateColumn("stars", gorm.Expr(
				"(SELECT AVG(stars) FROM ratings WHERE rated_user_id = ? AND deleted_at IS NULL)",
				ride.CreatorID,
			)).Error
	})
	if err != nil {
		return nil, err
	}

	RecomputeTrustScore(db, log, ride.CreatorID)

	return &rating, nil
}

// CancelRide moves an open ride to canceled. Creator only; terminal states
// are unreachable.
func CancelRide(db *gorm.DB, rideID, actorID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	if ride.CreatorID != actorID {
		return nil, ErrNotRideCreator
	}
	if !ride.CanTransition(models.RideStatusCanceled) {
		return nil, ErrInvalidTransition
	}

	res := db.Model(&models.Ride{}).
		Where("id = ? AND status IN ?", rideID, openStatuses).
		UpdateColumn("status", models.RideStatusCanceled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	ride.Status = models.RideStatusCanceled
	return &ride, nil
}

// ActivateRideOnPayment flips a pending ride to active. Called when the first
// payment for the ride completes; a no-op for rides already past pending.
func ActivateRideOnPayment(db *gorm.DB, rideID uint) (bool, error) {
	res := db.Model(&models.Ride{}).
		Where("id = ? AND status = ?", rideID, models.RideStatusPending).
		UpdateColumn("status", models.RideStatusActive)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteRide removes a ride. Deletion is forbidden while passengers hold
// seats, so their joined-rides history never points at a missing ride.
func DeleteRide(db *gorm.DB, rideID, actorID uint, isAdmin bool) error {
	var ride models.Ride
	if err := db.Preload("Passengers").First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRideNotFound
		}
		return err
	}
	if ride.CreatorID != actorID && !isAdmin {
		return ErrNotRideCreator
	}
	if len(ride.Passengers) > 0 {
		return ErrHasPassengers
	}

	return db.Delete(&ride).Error
}
