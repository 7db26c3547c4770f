package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/config"
	"github.com/sharewheels/carpool-backend/internal/services"
	"github.com/sharewheels/carpool-backend/pkg/logger"
	"gorm.io/gorm"
)

// FindRides handles GET /api/rides/find. Validation happens before any
// database or cache access, so a malformed query is always a 400.
func FindRides(db *gorm.DB, log *logger.Logger, cacheCfg config.CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := services.ParseSearchQuery(
			c.Query("from"),
			c.Query("to"),
			c.Query("seat"),
			c.Query("date"),
			c.Query("tags"),
			c.Query("sort"),
			c.Query("depart"),
		)
		if err != nil {
			var iqe *services.InvalidQueryError
			if errors.As(err, &iqe) {
				c.JSON(400, gin.H{"success": false, "message": iqe.Message, "field": iqe.Field})
				return
			}
			c.JSON(400, gin.H{"success": false, "message": err.Error()})
			return
		}

		ctx := c.Request.Context()
		key := services.SearchCacheKey(q.From, q.To, q.MinSeats, q.Date, q.Tags)

		rides, hit, err := services.GetCachedSearchResults(ctx, key)
		if err != nil {
			log.Warn("search cache read failed", logger.Err(err))
		}
		if !hit {
			rides, err = services.FindRides(db, q)
			if err != nil {
				log.Error("ride search failed", logger.Err(err))
				c.JSON(500, gin.H{"success": false, "message": "Failed to search rides"})
				return
			}
			if err := services.CacheSearchResults(ctx, key, rides, cacheCfg.SearchTTL); err != nil {
				log.Warn("search cache write failed", logger.Err(err))
			}
		}

		// Bucket filtering and sorting are view concerns, applied after the
		// cache so one cached result set serves every sort order.
		rides = services.FilterByDepartureBuckets(rides, q.Buckets)
		rides = services.SortRides(rides, q.SortBy)

		c.JSON(200, gin.H{"success": true, "rides": rides})
	}
}
