package allocation

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Half-day slot windows.
var slotWindows = map[string][2]string{
	models.SlotAM: {"08:00", "12:00"},
	models.SlotPM: {"12:00", "17:00"},
}

// GetViableSlots enumerates feasible (engineer, date, half-day) candidates
// for a booking request. Engineers must hold a competency for the service,
// cover the site postcode, sit under the daily cap and the weekly overload
// threshold, and have no recorded unavailability or conflicting booking.
// An empty result is a normal business outcome, returned as an empty slice
// with no error.
func (s *DefaultAllocationService) GetViableSlots(ctx context.Context, req models.BookingRequest, maxSlots int) ([]models.ScheduleSlot, error) {
	logger := s.logger()
	if maxSlots <= 0 {
		maxSlots = s.maxSlots()
	}

	svc, err := s.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("service %s: %v", req.ServiceID, err))
	}
	site, err := s.Catalog.GetSite(ctx, req.SiteID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("site %s: %v", req.SiteID, err))
	}
	rules, err := s.ConfigSrc.PricingRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}

	engineers, err := s.Engineers.ListByCompetency(ctx, svc.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to list engineers: %w", err)
	}
	var eligible []models.EngineerWithProfile
	for _, eng := range engineers {
		if eng.CoversPostcode(site.Postcode) {
			eligible = append(eligible, eng)
		}
	}
	if len(eligible) == 0 {
		logger.Info("no engineers cover the site",
			zap.String("serviceId", req.ServiceID),
			zap.String("postcode", site.Postcode))
		return []models.ScheduleSlot{}, nil
	}

	dates := s.searchDates(req)
	if len(dates) == 0 {
		return []models.ScheduleSlot{}, nil
	}

	// Unavailability is fetched once per engineer, not per date.
	blocks := make(map[string][]models.Unavailability, len(eligible))
	for _, eng := range eligible {
		list, err := s.Engineers.ListUnavailability(ctx, eng.ID, dates[0], dates[len(dates)-1])
		if err != nil {
			// Data-missing: skip the engineer, not the request.
			logger.Warn("skipping engineer with unreadable diary",
				zap.String("engineerId", eng.ID), zap.Error(err))
			blocks[eng.ID] = nil
			continue
		}
		blocks[eng.ID] = list
	}

	basePrice := EstimateBasePrice(*svc, req.EstimatedQty)
	duration := EstimateDurationMinutes(*svc, req.EstimatedQty)

	// Weekly load is memoised per (engineer, ISO week); the search window
	// can straddle a week boundary.
	weekStatsCache := make(map[string]models.EngineerWeekStats)
	cohortCache := make(map[string]float64)

	var candidates []models.ScheduleSlot
	// Nearest dates fill first, so the cap keeps the earliest options.
	for _, date := range dates {
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			continue
		}
		weekStart, weekEnd := isoWeekBounds(day)

		cohortAvg, ok := cohortCache[weekStart]
		if !ok {
			cohortAvg, err = s.Bookings.CohortAverage(ctx, weekStart, weekEnd)
			if err != nil {
				logger.Warn("cohort average unavailable", zap.String("weekStart", weekStart), zap.Error(err))
				cohortAvg = 0
			}
			cohortCache[weekStart] = cohortAvg
		}

		// Cluster context is per-date, shared across engineers.
		nearby, err := s.Bookings.CountNearby(ctx, date, site.Location, rules.Cluster.RadiusKm)
		if err != nil {
			logger.Warn("nearby-job count unavailable", zap.String("date", date), zap.Error(err))
			nearby = 0
		}

		for _, eng := range eligible {
			if len(candidates) >= maxSlots {
				return candidates, nil
			}

			jobsOnDay, err := s.Bookings.CountOnDay(ctx, eng.ID, date)
			if err != nil {
				logger.Warn("day count unavailable", zap.String("engineerId", eng.ID), zap.Error(err))
				continue
			}
			if jobsOnDay >= MaxJobsPerDay {
				continue
			}

			weekKey := eng.ID + "|" + weekStart
			week, ok := weekStatsCache[weekKey]
			if !ok {
				stats, err := s.Bookings.WeekStats(ctx, eng.ID, weekStart, weekEnd)
				if err != nil {
					logger.Warn("week stats unavailable", zap.String("engineerId", eng.ID), zap.Error(err))
					continue
				}
				week = *stats
				weekStatsCache[weekKey] = week
			}
			if ComputeWorkloadBalance(eng.ID, day, week, cohortAvg, jobsOnDay).IsOverloaded {
				continue
			}

			for _, slotName := range []string{models.SlotAM, models.SlotPM} {
				if len(candidates) >= maxSlots {
					break
				}
				if dayBlocked(blocks[eng.ID], date, slotName) {
					continue
				}
				conflict, err := s.Bookings.HasConflict(ctx, eng.ID, date, slotName)
				if err != nil {
					logger.Warn("conflict check unavailable",
						zap.String("engineerId", eng.ID), zap.String("date", date), zap.Error(err))
					continue
				}
				if conflict {
					continue
				}

				window := slotWindows[slotName]
				candidates = append(candidates, models.ScheduleSlot{
					ID:                   uuid.New().String(),
					Date:                 date,
					Slot:                 slotName,
					EngineerID:           eng.ID,
					StartTime:            window[0],
					EndTime:              window[1],
					EstimatedPrice:       basePrice,
					EstimatedDuration:    duration,
					NearbyJobCount:       nearby,
					IsClusterOpportunity: rules.Cluster.Enabled && nearby >= rules.Cluster.MinNearbyJobs,
				})
			}
		}
	}

	if len(candidates) == 0 {
		logger.Info("no viable slots for request",
			zap.String("serviceId", req.ServiceID),
			zap.String("siteId", req.SiteID))
	}
	return candidates, nil
}

// searchDates returns the ordered candidate dates for the request. Exact-date
// requests search forward from the preferred date; flexible-week requests
// search the ISO week containing it. Dates in the past are dropped.
func (s *DefaultAllocationService) searchDates(req models.BookingRequest) []string {
	today := time.Now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, 1)
	windowDays := s.searchWindowDays()

	if req.PreferredDate != nil {
		preferred := req.PreferredDate.Truncate(24 * time.Hour)
		if req.IsFlexible() {
			weekStart, _ := isoWeekBounds(preferred)
			if t, err := time.Parse(models.DateLayout, weekStart); err == nil {
				start = t
				windowDays = 7
			}
		} else if preferred.After(start) {
			start = preferred
		}
	}

	var dates []string
	for i := 0; i < windowDays; i++ {
		day := start.AddDate(0, 0, i)
		if day.Before(today.AddDate(0, 0, 1)) {
			continue
		}
		dates = append(dates, day.Format(models.DateLayout))
	}
	return dates
}

func dayBlocked(blocks []models.Unavailability, date, slot string) bool {
	for _, b := range blocks {
		if b.Blocks(date, slot) {
			return true
		}
	}
	return false
}
