package utils

import (
	"math"

	"fieldserve/models"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometres between two
// latitude/longitude pairs. Straight-line distance is a deliberate proxy;
// the core performs no road-network routing.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceKm returns the haversine distance between two GeoPoints.
// ok is false when either point carries no usable coordinates.
func DistanceKm(a, b models.GeoPoint) (km float64, ok bool) {
	lat1, lon1, ok1 := a.LatLon()
	lat2, lon2, ok2 := b.LatLon()
	if !ok1 || !ok2 {
		return 0, false
	}
	return Haversine(lat1, lon1, lat2, lon2), true
}
