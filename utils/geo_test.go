package utils

import (
	"testing"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// London to Paris, roughly 344 km great-circle.
	km := Haversine(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, km, 3)

	assert.Zero(t, Haversine(51.5, -0.1, 51.5, -0.1))
}

func TestDistanceKm(t *testing.T) {
	a := models.NewGeoPoint(51.50, -0.12)
	b := models.NewGeoPoint(51.45, -0.15)

	km, ok := DistanceKm(a, b)
	assert.True(t, ok)
	assert.Greater(t, km, 5.0)
	assert.Less(t, km, 7.0)

	_, ok = DistanceKm(a, models.GeoPoint{})
	assert.False(t, ok, "missing coordinates are not a zero distance")
}
