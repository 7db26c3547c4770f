package services

import (
	"errors"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"gorm.io/gorm"
)

// ComputeTrustScore derives a bounded reputation score from ride history and
// the unweighted mean of received rating stars.
func ComputeTrustScore(ridesCreated, ridesJoined int, meanStars float64) float64 {
	score := models.DefaultTrustScore +
		2*float64(ridesCreated) +
		1*float64(ridesJoined) +
		5*meanStars

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RecomputeTrustScore overwrites a user's stored trust score from current
// ride and rating counts. Failures are logged and swallowed: a trust update
// must never block the operation that triggered it.
func RecomputeTrustScore(db *gorm.DB, log *logger.Logger, userID uint) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("trust score recompute skipped, user not found",
				logger.Uint("userId", userID))
		} else {
			log.Error("trust score recompute failed to load user",
				logger.Uint("userId", userID), logger.Err(err))
		}
		return
	}

	var created, joined int64
	if err := db.Model(&models.Ride{}).Where("creator_id = ?", userID).Count(&created).Error; err != nil {
		log.Error("trust score recompute failed", logger.Uint("userId", userID), logger.Err(err))
		return
	}
	if err := db.Table("ride_passengers").Where("user_id = ?", userID).Count(&joined).Error; err != nil {
		log.Error("trust score recompute failed", logger.Uint("userId", userID), logger.Err(err))
		return
	}

	var meanStars float64
	row := db.Model(&models.Rating{}).
		Where("rated_user_id = ?", userID).
		Select("COALESCE(AVG(stars), 0)").
		Row()
	if err := row.Scan(&meanStars); err != nil {
		log.Error("trust score recompute failed", logger.Uint("userId", userID), logger.Err(err))
		return
	}

	score := ComputeTrustScore(int(created), int(joined), meanStars)
	if err := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("trust_score", score).Error; err != nil {
		log.Error("trust score update failed", logger.Uint("userId", userID), logger.Err(err))
		return
	}

	log.Info("trust score updated",
		logger.Uint("userId", userID), logger.Float64("score", score))
}
