package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"gorm.io/gorm"
)

// CarbonResetScheduler zeroes the per-user carbon accumulators at local week
// and month boundaries. Resets run outside request handling and are
// idempotent: zeroing an already-zero column changes nothing, and the redis
// lock keeps a multi-instance deployment from racing on the same period.
type CarbonResetScheduler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCarbonResetScheduler(db *gorm.DB, log *logger.Logger) *CarbonResetScheduler {
	return &CarbonResetScheduler{db: db, log: log}
}

// Run blocks until ctx is canceled, firing resets as boundaries pass.
func (s *CarbonResetScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.maybeReset(ctx, now)
		}
	}
}

func (s *CarbonResetScheduler) maybeReset(ctx context.Context, now time.Time) {
	now = now.Local()

	// Week boundary: the first hour of Monday.
	if now.Weekday() == time.Monday && now.Hour() == 0 {
		s.resetWeekly(ctx, now)
	}

	// Month boundary: the first hour of the first day.
	if now.Day() == 1 && now.Hour() == 0 {
		s.resetMonthly(ctx, now)
	}
}

func (s *CarbonResetScheduler) resetWeekly(ctx context.Context, now time.Time) {
	lockKey := fmt.Sprintf("carbon:reset:weekly:%s", now.Format("2006-01-02"))
	if !AcquireResetLock(ctx, lockKey, 48*time.Hour) {
		return
	}

	if err := s.db.Model(&models.User{}).
		Where("carbon_saved_weekly <> 0").
		UpdateColumn("carbon_saved_weekly", 0).Error; err != nil {
		s.log.Error("weekly carbon reset failed", logger.Err(err))
		return
	}
	s.log.Info("weekly carbon savings reset for all users")
}

func (s *CarbonResetScheduler) resetMonthly(ctx context.Context, now time.Time) {
	lockKey := fmt.Sprintf("carbon:reset:monthly:%s", now.Format("2006-01"))
	if !AcquireResetLock(ctx, lockKey, 48*time.Hour) {
		return
	}

	if err := s.db.Model(&models.User{}).
		Where("carbon_saved_monthly <> 0").
		UpdateColumn("carbon_saved_monthly", 0).Error; err != nil {
		s.log.Error("monthly carbon reset failed", logger.Err(err))
		return
	}
	s.log.Info("monthly carbon savings reset for all users")
}
