package allocation

import (
	"testing"
	"time"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeWorkloadBalanceCurve(t *testing.T) {
	date := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		weekJobs      int
		cohortAverage float64
		wantScore     float64
		overloaded    bool
		underloaded   bool
	}{
		{name: "empty week", weekJobs: 0, cohortAverage: 4, wantScore: 65, underloaded: true},
		{name: "quarter load", weekJobs: 1, cohortAverage: 4, wantScore: 75, underloaded: true},
		{name: "half load", weekJobs: 2, cohortAverage: 4, wantScore: 85},
		{name: "at average", weekJobs: 4, cohortAverage: 4, wantScore: 100},
		{name: "ten percent over", weekJobs: 11, cohortAverage: 10, wantScore: 80},
		{name: "twenty-five percent over", weekJobs: 5, cohortAverage: 4, wantScore: 65, overloaded: true},
		{name: "double load floors at 20", weekJobs: 8, cohortAverage: 4, wantScore: 20, overloaded: true},
		{name: "no cohort data reads as average", weekJobs: 3, cohortAverage: 0, wantScore: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := ComputeWorkloadBalance("eng-1", date,
				models.EngineerWeekStats{EngineerID: "eng-1", JobCount: tt.weekJobs},
				tt.cohortAverage, 0)

			assert.InDelta(t, tt.wantScore, balance.Score, 1e-9)
			assert.Equal(t, tt.overloaded, balance.IsOverloaded)
			assert.Equal(t, tt.underloaded, balance.IsUnderloaded)
		})
	}
}

func TestComputeWorkloadBalanceDayCap(t *testing.T) {
	date := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	week := models.EngineerWeekStats{EngineerID: "eng-1", JobCount: 4}

	atAverage := ComputeWorkloadBalance("eng-1", date, week, 4, 0)
	nearCap := ComputeWorkloadBalance("eng-1", date, week, 4, MaxJobsPerDay-2)
	atCap := ComputeWorkloadBalance("eng-1", date, week, 4, MaxJobsPerDay)

	assert.InDelta(t, 100, atAverage.Score, 1e-9)
	assert.InDelta(t, 90, nearCap.Score, 1e-9)
	assert.InDelta(t, 70, atCap.Score, 1e-9)

	assert.False(t, nearCap.IsOverloaded)
	assert.True(t, atCap.IsOverloaded, "a full day overloads regardless of the week ratio")
}

func TestComputeWorkloadBalanceMonotonicPastAverage(t *testing.T) {
	date := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	prev := 101.0
	for jobs := 10; jobs <= 30; jobs++ {
		balance := ComputeWorkloadBalance("eng-1", date,
			models.EngineerWeekStats{JobCount: jobs}, 10, 0)
		assert.LessOrEqual(t, balance.Score, prev, "%d jobs", jobs)
		prev = balance.Score
	}
}

func TestIsoWeekBounds(t *testing.T) {
	tests := []struct {
		day   string
		start string
		end   string
	}{
		{"2026-03-04", "2026-03-02", "2026-03-08"}, // Wednesday
		{"2026-03-02", "2026-03-02", "2026-03-08"}, // Monday
		{"2026-03-08", "2026-03-02", "2026-03-08"}, // Sunday stays in its week
	}
	for _, tt := range tests {
		day, err := time.Parse(models.DateLayout, tt.day)
		assert.NoError(t, err)
		start, end := isoWeekBounds(day)
		assert.Equal(t, tt.start, start, tt.day)
		assert.Equal(t, tt.end, end, tt.day)
	}
}
