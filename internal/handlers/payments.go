package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/internal/services"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"gorm.io/gorm"
)

// PaymentChecker verifies a payment reference with the provider.
// *services.PaymentVerifier is the production implementation.
type PaymentChecker interface {
	Verify(ctx context.Context, paymentRef string) (bool, error)
}

type CreatePaymentInput struct {
	RideID     uint    `json:"rideId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency"`
	PaymentRef string  `json:"paymentRef" binding:"required"`
	Method     string  `json:"method"`
}

// CreatePayment records a passenger's payment for a ride. The first completed
// payment moves a pending ride to active.
func CreatePayment(db *gorm.DB, log *logger.Logger, verifier PaymentChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input CreatePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Amount <= 0 {
			c.JSON(400, gin.H{"error": "amount must be positive"})
			return
		}

		var ride models.Ride
		if err := db.Preload("Passengers").First(&ride, input.RideID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if !ride.HasPassenger(userID) {
			c.JSON(403, gin.H{"error": "Only passengers can pay for this ride"})
			return
		}

		// A provider outage must not lose the payment record: it lands as
		// pending and can be re-verified later.
		providerDown := false
		verified, err := verifier.Verify(c.Request.Context(), input.PaymentRef)
		if err != nil {
			log.Warn("payment verification unavailable, recording as pending", logger.Err(err))
			providerDown = true
		}

		payment := models.Payment{
			RideID:     input.RideID,
			PayerID:    userID,
			Amount:     input.Amount,
			Currency:   input.Currency,
			PaymentRef: input.PaymentRef,
			Method:     input.Method,
		}
		if payment.Currency == "" {
			payment.Currency = "USD"
		}
		if payment.Method == "" {
			payment.Method = "card"
		}
		switch {
		case providerDown:
			payment.Status = models.PaymentStatusPending
		case verified:
			payment.Status = models.PaymentStatusCompleted
		default:
			payment.Status = models.PaymentStatusFailed
		}

		if err := db.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(400, gin.H{"error": "Payment reference already recorded"})
				return
			}
			log.Error("failed to record payment", logger.Err(err))
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		if payment.Status == models.PaymentStatusCompleted {
			activated, err := services.ActivateRideOnPayment(db, ride.ID)
			if err != nil {
				log.Error("failed to activate ride on payment",
					logger.Uint("rideId", ride.ID), logger.Err(err))
			} else if activated {
				log.Info("ride activated by payment",
					logger.Uint("rideId", ride.ID), logger.Uint("paymentId", payment.ID))
			}
		}

		c.JSON(201, gin.H{"success": true, "payment": payment})
	}
}

func GetPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		var payment models.Payment
		if err := db.Preload("Ride").First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Payment not found"})
			return
		}
		if payment.PayerID != userID && payment.Ride.CreatorID != userID && !isAdmin {
			c.JSON(403, gin.H{"error": "Not your payment"})
			return
		}
		c.JSON(200, gin.H{"success": true, "payment": payment})
	}
}

// GetRidePayments lists payments for a ride. Creator and admin only.
func GetRidePayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		var ride models.Ride
		if err := db.First(&ride, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.CreatorID != userID && !isAdmin {
			c.JSON(403, gin.H{"error": "Only the ride creator can view payments"})
			return
		}

		var payments []models.Payment
		if err := db.Where("ride_id = ?", ride.ID).
			Order("id ASC").Find(&payments).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}
		c.JSON(200, gin.H{"success": true, "payments": payments})
	}
}
