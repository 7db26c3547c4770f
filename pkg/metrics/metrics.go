package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by method, route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carpool_http_requests_total",
		Help: "Number of HTTP requests processed",
	}, []string{"method", "route", "status"})

	RidesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_rides_created_total",
		Help: "Number of rides published",
	})

	RideJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_ride_joins_total",
		Help: "Number of successful seat reservations",
	})

	RideJoinConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_ride_join_conflicts_total",
		Help: "Number of join attempts rejected by an invariant check",
	})

	RidesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_rides_completed_total",
		Help: "Number of rides completed",
	})

	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_notifications_dispatched_total",
		Help: "Number of notifications persisted",
	})

	NotificationsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carpool_notifications_pushed_total",
		Help: "Number of notifications delivered to a live connection",
	})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
