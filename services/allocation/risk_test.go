package allocation

import (
	"testing"
	"time"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var riskNow = time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)

func riskFactorNames(risk models.CancellationRisk) []string {
	names := make([]string, 0, len(risk.Factors))
	for _, f := range risk.Factors {
		names = append(names, f.Factor)
	}
	return names
}

func TestPredictCancellationRiskNewCustomerLongLead(t *testing.T) {
	req := models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"}
	slot := models.ScheduleSlot{Date: "2026-03-24", Slot: models.SlotAM} // 20 days out

	risk := PredictCancellationRisk(req, slot, RiskInputs{Now: riskNow})

	// 0.08 default base + 0.05 new customer + 0.08 long lead.
	assert.InDelta(t, 0.21, risk.Probability, 1e-9)
	assert.Equal(t, models.RiskTierMedium, risk.Tier)
	assert.InDelta(t, 79, risk.Score, 1e-9)

	names := riskFactorNames(risk)
	assert.Contains(t, names, "New customer")
	assert.Contains(t, names, "Long lead time")
	assert.Contains(t, risk.Mitigations, "Require a deposit at booking")
}

func TestPredictCancellationRiskReliableShortLead(t *testing.T) {
	req := models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"}
	slot := models.ScheduleSlot{Date: "2026-03-05", Slot: models.SlotPM} // tomorrow

	risk := PredictCancellationRisk(req, slot, RiskInputs{
		Customer: models.Customer{ID: "cust-1", TotalBookings: 10, CompletedBookings: 10},
		Site:     models.SiteStats{SiteID: "site-1", TotalBookings: 8},
		Now:      riskNow,
	})

	// 0.08 - 0.05 reliable customer - 0.08 short lead - 0.03 reliable site,
	// clamped at zero.
	assert.Zero(t, risk.Probability)
	assert.Equal(t, models.RiskTierLow, risk.Tier)
	assert.InDelta(t, 100, risk.Score, 1e-9)
	assert.Empty(t, risk.Mitigations)
}

func TestPredictCancellationRiskClampsProbability(t *testing.T) {
	req := models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"}
	slot := models.ScheduleSlot{Date: "2026-03-24", Slot: models.SlotAM}

	stats := models.CancellationStats{
		BaseRate: 0.5,
		Samples:  200,
		ByWeekday: map[string]models.RateSample{
			"Tuesday": {Rate: 1.0, Samples: 40}, // 2026-03-24 is a Tuesday
		},
		ByService: map[string]models.RateSample{
			"svc-1": {Rate: 0.9, Samples: 30},
		},
		BySlot: map[string]models.RateSample{
			models.SlotAM: {Rate: 0.8, Samples: 60},
		},
	}
	risk := PredictCancellationRisk(req, slot, RiskInputs{
		Stats:    stats,
		Customer: models.Customer{ID: "cust-1", TotalBookings: 10, CancelledBookings: 5},
		Site:     models.SiteStats{SiteID: "site-1", TotalBookings: 10, Cancellations: 4},
		Now:      riskNow,
	})

	assert.InDelta(t, 0.8, risk.Probability, 1e-9)
	assert.Equal(t, models.RiskTierHigh, risk.Tier)
	assert.Contains(t, risk.Mitigations, "Hold overbooking protection for this slot")
}

func TestPredictCancellationRiskSparsePatternsIgnored(t *testing.T) {
	req := models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"}
	slot := models.ScheduleSlot{Date: "2026-03-10", Slot: models.SlotAM}

	stats := models.CancellationStats{
		BaseRate: 0.10,
		Samples:  50,
		ByService: map[string]models.RateSample{
			"svc-1": {Rate: 0.9, Samples: 3}, // under the 10-sample minimum
		},
		BySlot: map[string]models.RateSample{
			models.SlotAM: {Rate: 0.9, Samples: 5}, // under the 20-sample minimum
		},
	}
	risk := PredictCancellationRisk(req, slot, RiskInputs{
		Stats:    stats,
		Customer: models.Customer{ID: "cust-1", TotalBookings: 3},
		Now:      riskNow,
	})

	names := riskFactorNames(risk)
	assert.NotContains(t, names, "Service cancellation pattern")
	assert.NotContains(t, names, "Time-slot pattern")
}

func TestApplyPrepaidAdjustment(t *testing.T) {
	req := models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"}
	slot := models.ScheduleSlot{Date: "2026-03-24", Slot: models.SlotAM}

	risk := PredictCancellationRisk(req, slot, RiskInputs{Now: riskNow})
	require.NotEmpty(t, risk.Mitigations)

	adjusted := ApplyPrepaidAdjustment(risk)

	assert.InDelta(t, risk.Probability*0.3, adjusted.Probability, 1e-9)
	assert.Less(t, adjusted.Probability, risk.Probability)
	assert.Empty(t, adjusted.Mitigations)

	last := adjusted.Factors[len(adjusted.Factors)-1]
	assert.Equal(t, "Prepaid booking", last.Factor)
	assert.Negative(t, last.Impact)

	// Input untouched.
	assert.NotEmpty(t, risk.Mitigations)
	assert.Len(t, risk.Factors, len(adjusted.Factors)-1)
}

func TestRiskTierBoundaries(t *testing.T) {
	tests := []struct {
		probability float64
		want        string
	}{
		{0.0, models.RiskTierLow},
		{0.10, models.RiskTierLow},
		{0.11, models.RiskTierMedium},
		{0.24, models.RiskTierMedium},
		{0.25, models.RiskTierHigh},
		{0.8, models.RiskTierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskTier(tt.probability), "probability %.2f", tt.probability)
	}
}
