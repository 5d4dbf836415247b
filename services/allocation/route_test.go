package allocation

import (
	"testing"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptimizedRouteEmptyDay(t *testing.T) {
	route := BuildOptimizedRoute("eng-1", "2026-03-04", nil, models.NewGeoPoint(51.5, -0.1))

	assert.Empty(t, route.Stops)
	assert.Zero(t, route.TotalKm)
	assert.InDelta(t, 100, route.EfficiencyScore, 1e-9)
	assert.Equal(t, models.RouteOptimized, route.EfficiencyLabel)
}

func TestBuildOptimizedRouteOrdersByProximity(t *testing.T) {
	base := models.NewGeoPoint(51.50, -0.10)
	jobs := []models.RouteJob{
		{BookingID: "b-far", SiteID: "s-far", Location: models.NewGeoPoint(51.70, -0.10)},
		{BookingID: "b-near", SiteID: "s-near", Location: models.NewGeoPoint(51.51, -0.10)},
		{BookingID: "b-mid", SiteID: "s-mid", Location: models.NewGeoPoint(51.60, -0.10)},
	}

	route := BuildOptimizedRoute("eng-1", "2026-03-04", jobs, base)

	require.Len(t, route.Stops, 3)
	assert.Equal(t, "b-near", route.Stops[0].BookingID)
	assert.Equal(t, "b-mid", route.Stops[1].BookingID)
	assert.Equal(t, "b-far", route.Stops[2].BookingID)
	for i, stop := range route.Stops {
		assert.Equal(t, i+1, stop.Sequence)
	}

	// Against points on a line the greedy order is the true optimum.
	assert.LessOrEqual(t, route.TotalKm, routeTotalKm(jobs, base)+1e-9)
}

func TestBuildOptimizedRouteNeverWorseThanOriginal(t *testing.T) {
	base := models.NewGeoPoint(52.0, -1.0)
	jobs := []models.RouteJob{
		{BookingID: "a", Location: models.NewGeoPoint(52.05, -1.20)},
		{BookingID: "b", Location: models.NewGeoPoint(52.30, -0.90)},
		{BookingID: "c", Location: models.NewGeoPoint(51.90, -1.05)},
		{BookingID: "d", Location: models.NewGeoPoint(52.10, -0.80)},
	}

	route := BuildOptimizedRoute("eng-1", "2026-03-04", jobs, base)

	assert.LessOrEqual(t, route.TotalKm, routeTotalKm(jobs, base)+1e-9)

	// Same stop set, whatever the order.
	got := map[string]bool{}
	for _, stop := range route.Stops {
		got[stop.BookingID] = true
	}
	assert.Len(t, got, len(jobs))
	for _, job := range jobs {
		assert.True(t, got[job.BookingID], job.BookingID)
	}
}

func TestBuildOptimizedRouteMissingCoordinates(t *testing.T) {
	base := models.NewGeoPoint(51.5, -0.1)
	jobs := []models.RouteJob{
		{BookingID: "a", SiteID: "s-1"}, // no location recorded
		{BookingID: "b", SiteID: "s-2"},
	}

	route := BuildOptimizedRoute("eng-1", "2026-03-04", jobs, base)

	require.Len(t, route.Stops, 2)
	// Every unknown hop is assumed at the fallback distance.
	assert.InDelta(t, 2*fallbackHopKm, route.TotalKm, 1e-9)
	assert.InDelta(t, fallbackHopKm/averageTravelSpeedKmh*60, route.Stops[0].TravelMinutes, 1e-9)
}

func TestEfficiencyLabels(t *testing.T) {
	assert.Equal(t, models.RouteOptimized, efficiencyLabel(80))
	assert.Equal(t, models.RouteModerate, efficiencyLabel(79.9))
	assert.Equal(t, models.RouteModerate, efficiencyLabel(50))
	assert.Equal(t, models.RouteNeedsAttention, efficiencyLabel(49.9))
}

func TestEfficiencyScoreFromAverageLeg(t *testing.T) {
	// 3 stops over 15 km: 5 km average leg.
	assert.InDelta(t, 80, efficiencyScore(15, 3), 1e-9)
	// Long cross-territory legs drag the score to the floor.
	assert.Zero(t, efficiencyScore(300, 3))
}
