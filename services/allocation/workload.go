package allocation

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"
)

// MaxJobsPerDay is the hard per-day cap on an engineer's confirmed jobs.
const MaxJobsPerDay = 7

// ComputeWorkloadBalance compares one engineer's week against the cohort
// average and scores it. The curve peaks at slightly-under-average load:
// an empty-looking diary may be the residue of recent cancellations, so
// near-zero load is deliberately not top-scored.
func ComputeWorkloadBalance(engineerID string, date time.Time, week models.EngineerWeekStats, cohortAverage float64, jobsOnDay int) models.WorkloadBalance {
	ratio := 1.0
	if cohortAverage > 0 {
		ratio = float64(week.JobCount) / cohortAverage
	}

	var score float64
	switch {
	case ratio < 0.5:
		score = 65 + (ratio/0.5)*20
	case ratio < 0.8:
		score = 85 + ((ratio-0.5)/0.3)*15
	case ratio <= 1.0:
		score = 100
	case ratio <= 1.2:
		score = 90 - ((ratio-1.0)/0.2)*20
	default:
		score = 70 - (ratio-1.2)*100
		if score < 20 {
			score = 20
		}
	}

	overloaded := ratio > 1.2
	if jobsOnDay >= MaxJobsPerDay {
		score -= 30
		overloaded = true
	} else if jobsOnDay >= MaxJobsPerDay-2 {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.WorkloadBalance{
		EngineerID:        engineerID,
		Date:              date.Format(models.DateLayout),
		WeekJobCount:      week.JobCount,
		WeekRevenue:       week.Revenue,
		WeekTravelKm:      week.TravelKm,
		CohortAverage:     cohortAverage,
		ComparedToAverage: ratio,
		JobsOnDay:         jobsOnDay,
		Score:             score,
		IsOverloaded:      overloaded,
		IsUnderloaded:     ratio < 0.5,
	}
}

// CalculateWorkloadBalance loads the engineer's ISO-week stats and the
// cohort average, then scores the proposed date.
func (s *DefaultAllocationService) CalculateWorkloadBalance(ctx context.Context, engineerID string, date time.Time) (*models.WorkloadBalance, error) {
	weekStart, weekEnd := isoWeekBounds(date)

	week, err := s.Bookings.WeekStats(ctx, engineerID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load week stats: %w", err)
	}
	cohortAvg, err := s.Bookings.CohortAverage(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load cohort average: %w", err)
	}
	jobsOnDay, err := s.Bookings.CountOnDay(ctx, engineerID, date.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to count day jobs: %w", err)
	}

	balance := ComputeWorkloadBalance(engineerID, date, *week, cohortAvg, jobsOnDay)
	return &balance, nil
}

// isoWeekBounds returns the Monday and Sunday of the ISO week containing t.
func isoWeekBounds(t time.Time) (start, end string) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(models.DateLayout), sunday.Format(models.DateLayout)
}
