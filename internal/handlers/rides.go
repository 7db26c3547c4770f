package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/internal/services"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/sharewheels/carpool-backend/pkg/metrics"
	"github.com/sharewheels/carpool-backend/pkg/utils"
	"gorm.io/gorm"
)

type CreateRideInput struct {
	OriginPlace      string   `json:"originPlace" binding:"required"`
	OriginLat        *float64 `json:"originLat"`
	OriginLng        *float64 `json:"originLng"`
	DestinationPlace string   `json:"destinationPlace" binding:"required"`
	DestinationLat   *float64 `json:"destinationLat"`
	DestinationLng   *float64 `json:"destinationLng"`
	StartTime        string   `json:"startTime" binding:"required"`
	EndTime          string   `json:"endTime" binding:"required"`
	Seats            int      `json:"seats" binding:"required"`
	Price            float64  `json:"price"`
	Tags             []string `json:"tags"`
	VehicleNumber    string   `json:"vehicleNumber"`
	VehicleModel     string   `json:"vehicleModel"`
}

type UpdateRideInput struct {
	OriginPlace      *string  `json:"originPlace"`
	DestinationPlace *string  `json:"destinationPlace"`
	StartTime        *string  `json:"startTime"`
	EndTime          *string  `json:"endTime"`
	Price            *float64 `json:"price"`
	Tags             []string `json:"tags"`
	VehicleNumber    *string  `json:"vehicleNumber"`
	VehicleModel     *string  `json:"vehicleModel"`
}

func CreateRide(db *gorm.DB, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input CreateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		startTime, err := time.Parse(time.RFC3339, input.StartTime)
		if err != nil {
			c.JSON(400, gin.H{"error": "startTime must be RFC3339"})
			return
		}
		endTime, err := time.Parse(time.RFC3339, input.EndTime)
		if err != nil {
			c.JSON(400, gin.H{"error": "endTime must be RFC3339"})
			return
		}

		if !endTime.After(startTime) {
			c.JSON(400, gin.H{"error": "endTime must be after startTime"})
			return
		}
		if !sameLocalDay(startTime, endTime) {
			c.JSON(400, gin.H{"error": "startTime and endTime must fall on the same day"})
			return
		}
		if input.Seats <= 0 {
			c.JSON(400, gin.H{"error": "seats must be positive"})
			return
		}
		if input.Price < 0 {
			c.JSON(400, gin.H{"error": "price cannot be negative"})
			return
		}
		for _, tag := range input.Tags {
			if !models.IsValidRideTag(tag) {
				c.JSON(400, gin.H{"error": fmt.Sprintf("unknown tag %q", tag)})
				return
			}
		}

		ride := models.Ride{
			CreatorID:        userID,
			SeatsTotal:       input.Seats,
			AvailableSeats:   input.Seats,
			OriginPlace:      input.OriginPlace,
			OriginLat:        input.OriginLat,
			OriginLng:        input.OriginLng,
			DestinationPlace: input.DestinationPlace,
			DestinationLat:   input.DestinationLat,
			DestinationLng:   input.DestinationLng,
			StartTime:        startTime,
			EndTime:          endTime,
			Status:           models.RideStatusPending,
			Price:            input.Price,
			Tags:             pq.StringArray(input.Tags),
			VehicleNumber:    input.VehicleNumber,
			VehicleModel:     input.VehicleModel,
		}

		if err := db.Create(&ride).Error; err != nil {
			log.Error("failed to create ride", logger.Err(err))
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		metrics.RidesCreated.Inc()
		services.InvalidateSearchCache(c.Request.Context())

		db.Preload("Creator").First(&ride, ride.ID)

		c.JSON(201, gin.H{"success": true, "ride": ride})
	}
}

func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ride models.Ride
		if err := db.Preload("Creator").Preload("Passengers").
			First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		resp := gin.H{"success": true, "ride": ride}
		// For rides still underway, show what the trip would save rather
		// than wait for completion to reveal a number.
		if ride.Status != models.RideStatusCompleted && ride.HasCoordinates() {
			dist := utils.HaversineDistance(
				*ride.OriginLat, *ride.OriginLng,
				*ride.DestinationLat, *ride.DestinationLng,
			)
			resp["estimatedCarbonSaved"] = utils.CarbonSavedPerPassenger(dist)
		}
		c.JSON(200, resp)
	}
}

func GetAllRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rides []models.Ride
		if err := db.Preload("Creator").Order("id ASC").Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}
		c.JSON(200, gin.H{"success": true, "rides": rides})
	}
}

// GetMyRides lists rides the caller created and rides they hold a seat on.
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var created []models.Ride
		if err := db.Where("creator_id = ?", userID).
			Order("start_time DESC").Find(&created).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		var joined []models.Ride
		if err := db.Preload("Creator").
			Joins("JOIN ride_passengers rp ON rp.ride_id = rides.id").
			Where("rp.user_id = ?", userID).
			Order("rides.start_time DESC").Find(&joined).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, gin.H{"success": true, "created": created, "joined": joined})
	}
}

func UpdateRide(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		var ride models.Ride
		if err := db.Preload("Passengers").First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.CreatorID != userID && !isAdmin {
			c.JSON(403, gin.H{"error": "Only the ride creator can update this ride"})
			return
		}
		if !ride.IsOpen() {
			c.JSON(409, gin.H{"error": "Ride is no longer open"})
			return
		}

		var input UpdateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.OriginPlace != nil {
			updates["origin_place"] = *input.OriginPlace
		}
		if input.DestinationPlace != nil {
			updates["destination_place"] = *input.DestinationPlace
		}
		// The time window is validated as a pair even when only one side
		// changes.
		newStart, newEnd := ride.StartTime, ride.EndTime
		if input.StartTime != nil {
			t, err := time.Parse(time.RFC3339, *input.StartTime)
			if err != nil {
				c.JSON(400, gin.H{"error": "startTime must be RFC3339"})
				return
			}
			newStart = t
			updates["start_time"] = t
		}
		if input.EndTime != nil {
			t, err := time.Parse(time.RFC3339, *input.EndTime)
			if err != nil {
				c.JSON(400, gin.H{"error": "endTime must be RFC3339"})
				return
			}
			newEnd = t
			updates["end_time"] = t
		}
		if input.StartTime != nil || input.EndTime != nil {
			if !newEnd.After(newStart) {
				c.JSON(400, gin.H{"error": "endTime must be after startTime"})
				return
			}
			if !sameLocalDay(newStart, newEnd) {
				c.JSON(400, gin.H{"error": "startTime and endTime must fall on the same day"})
				return
			}
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(400, gin.H{"error": "price cannot be negative"})
				return
			}
			updates["price"] = *input.Price
		}
		if input.Tags != nil {
			for _, tag := range input.Tags {
				if !models.IsValidRideTag(tag) {
					c.JSON(400, gin.H{"error": fmt.Sprintf("unknown tag %q", tag)})
					return
				}
			}
			updates["tags"] = pq.StringArray(input.Tags)
		}
		if input.VehicleNumber != nil {
			updates["vehicle_number"] = *input.VehicleNumber
		}
		if input.VehicleModel != nil {
			updates["vehicle_model"] = *input.VehicleModel
		}

		if len(updates) > 0 {
			if err := db.Model(&ride).Updates(updates).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update ride"})
				return
			}
			services.InvalidateSearchCache(c.Request.Context())

			message := fmt.Sprintf("Ride to %s has been updated by the driver", ride.DestinationPlace)
			for _, p := range ride.Passengers {
				notifier.Notify(p.ID, ride.CreatorID, ride.ID, message, models.NotificationTypeRideUpdate)
			}
		}

		c.JSON(200, gin.H{"success": true, "ride": ride})
	}
}

func DeleteRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		rideID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		err := services.DeleteRide(db, rideID, userID, isAdmin)
		switch {
		case err == nil:
			services.InvalidateSearchCache(c.Request.Context())
			c.JSON(200, gin.H{"success": true, "message": "Ride deleted"})
		case errors.Is(err, services.ErrRideNotFound):
			c.JSON(404, gin.H{"error": "Ride not found"})
		case errors.Is(err, services.ErrNotRideCreator):
			c.JSON(403, gin.H{"error": "Only the ride creator can delete this ride"})
		case errors.Is(err, services.ErrHasPassengers):
			c.JSON(409, gin.H{"error": "Cannot delete a ride with passengers"})
		default:
			c.JSON(500, gin.H{"error": "Failed to delete ride"})
		}
	}
}
