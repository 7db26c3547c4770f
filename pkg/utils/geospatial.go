package utils

import (
	"math"
)

const (
	// earthRadiusKm is the mean Earth radius used for great-circle distances.
	earthRadiusKm = 6371

	// CarbonSavedPerPassengerKm is the estimated CO2 avoided, in grams, for
	// every kilometer a passenger shares a ride instead of driving alone.
	CarbonSavedPerPassengerKm = 50.0
)

// HaversineDistance calculates the great-circle distance between two points
// on Earth using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// CarbonSavedPerPassenger estimates the grams of CO2 a single passenger saves
// on a trip of the given length.
func CarbonSavedPerPassenger(distanceKm float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return distanceKm * CarbonSavedPerPassengerKm
}
