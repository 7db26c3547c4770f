package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/internal/services"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/sharewheels/carpool-backend/pkg/metrics"
	"github.com/sharewheels/carpool-backend/pkg/utils"
	"gorm.io/gorm"
)

type RateRideInput struct {
	Stars int `json:"stars" binding:"required"`
}

func JoinRide(db *gorm.DB, log *logger.Logger, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ride, err := services.JoinRide(db, rideID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrSelfJoin):
				c.JSON(400, gin.H{"error": "You cannot join your own ride"})
			case errors.Is(err, services.ErrAlreadyJoined):
				c.JSON(409, gin.H{"error": "You have already joined this ride"})
			case errors.Is(err, services.ErrRideFull):
				metrics.RideJoinConflicts.Inc()
				c.JSON(409, gin.H{"error": "No seats available"})
			case errors.Is(err, services.ErrRideClosed):
				c.JSON(409, gin.H{"error": "Ride is no longer open"})
			default:
				log.Error("join ride failed", logger.Uint("rideId", rideID), logger.Err(err))
				c.JSON(500, gin.H{"error": "Failed to join ride"})
			}
			return
		}

		metrics.RideJoins.Inc()
		services.InvalidateSearchCache(c.Request.Context())

		var passenger models.User
		passengerName := "A passenger"
		if err := db.First(&passenger, userID).Error; err == nil {
			passengerName = passenger.Name
		}

		notifier.Notify(ride.CreatorID, userID, ride.ID,
			fmt.Sprintf("%s booked a seat on your ride to %s", passengerName, ride.DestinationPlace),
			models.NotificationTypeBooking)

		if ride.Creator.PhoneNumber != "" {
			go func(phone, name, dest string) {
				if err := utils.SendSeatBookedSMS(phone, name, dest); err != nil {
					log.Warn("seat booked SMS failed", logger.Err(err))
				}
			}(ride.Creator.PhoneNumber, passengerName, ride.DestinationPlace)
		}

		c.JSON(200, gin.H{"success": true, "ride": ride})
	}
}

func LeaveRide(db *gorm.DB, log *logger.Logger, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ride, err := services.LeaveRide(db, rideID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrNotAPassenger):
				c.JSON(400, gin.H{"error": "You have not joined this ride"})
			case errors.Is(err, services.ErrRideClosed):
				c.JSON(409, gin.H{"error": "Ride is no longer open"})
			default:
				log.Error("leave ride failed", logger.Uint("rideId", rideID), logger.Err(err))
				c.JSON(500, gin.H{"error": "Failed to leave ride"})
			}
			return
		}

		services.InvalidateSearchCache(c.Request.Context())

		notifier.Notify(ride.CreatorID, userID, ride.ID,
			fmt.Sprintf("A passenger left your ride to %s", ride.DestinationPlace),
			models.NotificationTypeRideUpdate)

		c.JSON(200, gin.H{"success": true, "ride": ride})
	}
}

func CompleteRide(db *gorm.DB, log *logger.Logger, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ride, err := services.CompleteRide(db, log, rideID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrNotRideCreator):
				c.JSON(403, gin.H{"error": "Only the ride creator can complete this ride"})
			case errors.Is(err, services.ErrAlreadyCompleted):
				c.JSON(409, gin.H{"error": "Ride is already completed"})
			default:
				log.Error("complete ride failed", logger.Uint("rideId", rideID), logger.Err(err))
				c.JSON(500, gin.H{"error": "Failed to complete ride"})
			}
			return
		}

		metrics.RidesCompleted.Inc()
		services.InvalidateSearchCache(c.Request.Context())

		message := fmt.Sprintf("Your ride to %s is complete. You saved %.0f g of CO2!",
			ride.DestinationPlace, ride.CarbonSavedRide)
		for _, p := range ride.Passengers {
			notifier.Notify(p.ID, ride.CreatorID, ride.ID, message, models.NotificationTypeRideUpdate)
		}

		c.JSON(200, gin.H{"success": true, "ride": ride})
	}
}

func CancelRide(db *gorm.DB, log *logger.Logger, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ride, err := services.CancelRide(db, rideID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrNotRideCreator):
				c.JSON(403, gin.H{"error": "Only the ride creator can cancel this ride"})
			case errors.Is(err, services.ErrInvalidTransition):
				c.JSON(409, gin.H{"error": "Ride can no longer be canceled"})
			default:
				log.Error("cancel ride failed", logger.Uint("rideId", rideID), logger.Err(err))
				c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			}
			return
		}

		services.InvalidateSearchCache(c.Request.Context())

		message := fmt.Sprintf("Your ride to %s has been canceled by the driver", ride.DestinationPlace)
		for _, p := range ride.Passengers {
			notifier.Notify(p.ID, ride.CreatorID, ride.ID, message, models.NotificationTypeRideUpdate)

			if p.PhoneNumber != "" {
				go func(phone, dest string) {
					if err := utils.SendRideCanceledSMS(phone, dest); err != nil {
						log.Warn("ride canceled SMS failed", logger.Err(err))
					}
				}(p.PhoneNumber, ride.DestinationPlace)
			}
		}

		c.JSON(200, gin.H{"success": true, "ride": ride})
	}
}

func RateRide(db *gorm.DB, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var input RateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "stars is required"})
			return
		}

		rating, err := services.RateRide(db, log, rideID, userID, input.Stars)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidStars):
				c.JSON(400, gin.H{"error": "stars must be between 1 and 5"})
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": "Ride not found"})
			case errors.Is(err, services.ErrNotAPassenger):
				c.JSON(403, gin.H{"error": "Only passengers can rate this ride"})
			case errors.Is(err, services.ErrAlreadyRated):
				c.JSON(409, gin.H{"error": "You have already rated this ride"})
			default:
				log.Error("rate ride failed", logger.Uint("rideId", rideID), logger.Err(err))
				c.JSON(500, gin.H{"error": "Failed to rate ride"})
			}
			return
		}

		c.JSON(201, gin.H{"success": true, "rating": rating})
	}
}
