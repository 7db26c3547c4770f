package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a numeric path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// sameLocalDay reports whether two instants fall on the same local calendar
// date. Rides are day trips: departure and arrival share a date.
func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
