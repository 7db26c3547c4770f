package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/pkg/metrics"
)

// Metrics counts every request by method, matched route and status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
