package allocation

import (
	"context"
	"fmt"

	"fieldserve/models"
	"fieldserve/utils"
)

const (
	// fallbackHopKm is the assumed distance for a hop with missing
	// coordinates. Missing data degrades the estimate, never the route.
	fallbackHopKm = 5.0
	// averageTravelSpeedKmh converts straight-line distance to travel time.
	averageTravelSpeedKmh = 30.0
)

// BuildOptimizedRoute reorders a day's stops with a nearest-unvisited-next
// heuristic over haversine distance. The stop set is never changed, only
// the order; if the heuristic order travels further than the original
// (possible on adversarial layouts), the original order is kept, so the
// optimized total never exceeds it.
func BuildOptimizedRoute(engineerID, date string, jobs []models.RouteJob, base models.GeoPoint) models.OptimizedRoute {
	route := models.OptimizedRoute{EngineerID: engineerID, Date: date}
	if len(jobs) == 0 {
		route.EfficiencyScore = 100
		route.EfficiencyLabel = models.RouteOptimized
		route.Stops = []models.RouteStop{}
		return route
	}

	ordered := nearestNeighbourOrder(jobs, base)
	if routeTotalKm(ordered, base) > routeTotalKm(jobs, base) {
		ordered = jobs
	}

	stops := make([]models.RouteStop, 0, len(ordered))
	prev := base
	var totalKm float64
	for i, job := range ordered {
		hop := hopKm(prev, job.Location)
		totalKm += hop
		stops = append(stops, models.RouteStop{
			Sequence:      i + 1,
			BookingID:     job.BookingID,
			SiteID:        job.SiteID,
			Postcode:      job.Postcode,
			Location:      job.Location,
			TravelKm:      hop,
			TravelMinutes: hop / averageTravelSpeedKmh * 60,
		})
		prev = job.Location
	}

	route.Stops = stops
	route.TotalKm = totalKm
	route.TotalMinutes = totalKm / averageTravelSpeedKmh * 60
	route.EfficiencyScore = efficiencyScore(totalKm, len(stops))
	route.EfficiencyLabel = efficiencyLabel(route.EfficiencyScore)
	return route
}

// nearestNeighbourOrder greedily visits the nearest unvisited stop.
func nearestNeighbourOrder(jobs []models.RouteJob, base models.GeoPoint) []models.RouteJob {
	remaining := make([]models.RouteJob, len(jobs))
	copy(remaining, jobs)

	ordered := make([]models.RouteJob, 0, len(jobs))
	current := base
	for len(remaining) > 0 {
		best := 0
		bestKm := hopKm(current, remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if km := hopKm(current, remaining[i].Location); km < bestKm {
				best, bestKm = i, km
			}
		}
		picked := remaining[best]
		ordered = append(ordered, picked)
		remaining = append(remaining[:best], remaining[best+1:]...)
		current = picked.Location
	}
	return ordered
}

func routeTotalKm(jobs []models.RouteJob, base models.GeoPoint) float64 {
	prev := base
	var total float64
	for _, job := range jobs {
		total += hopKm(prev, job.Location)
		prev = job.Location
	}
	return total
}

func hopKm(from, to models.GeoPoint) float64 {
	if km, ok := utils.DistanceKm(from, to); ok {
		return km
	}
	return fallbackHopKm
}

// efficiencyScore rates the route from its average leg distance: short hops
// between clustered stops score high, long cross-territory legs drag it
// down.
func efficiencyScore(totalKm float64, stops int) float64 {
	if stops == 0 {
		return 100
	}
	avgLeg := totalKm / float64(stops)
	return clampScore(100 - avgLeg*4)
}

func efficiencyLabel(score float64) string {
	switch {
	case score >= 80:
		return models.RouteOptimized
	case score >= 50:
		return models.RouteModerate
	default:
		return models.RouteNeedsAttention
	}
}

// BuildOptimizedRoute loads the engineer's confirmed stops for the date and
// sequences them.
func (s *DefaultAllocationService) BuildOptimizedRoute(ctx context.Context, engineerID, date string) (*models.OptimizedRoute, error) {
	engineer, err := s.Engineers.GetByID(ctx, engineerID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("engineer %s: %v", engineerID, err))
	}
	jobs, err := s.Bookings.JobsForDay(ctx, engineerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load day jobs: %w", err)
	}

	route := BuildOptimizedRoute(engineerID, date, jobs, engineer.BaseLocation)
	return &route, nil
}
