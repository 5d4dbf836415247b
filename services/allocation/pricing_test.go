package allocation

import (
	"testing"
	"time"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, so the off-peak Monday/Tuesday discount stays out of the way
// unless a test asks for it.
var pricingNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func priceContext(base float64, date string) PriceContext {
	return PriceContext{
		Request:   models.BookingRequest{CustomerID: "cust-1", SiteID: "site-1", ServiceID: "svc-1"},
		Slot:      models.ScheduleSlot{Date: date, Slot: models.SlotAM, EngineerID: "eng-1"},
		Engineer:  models.EngineerWithProfile{ID: "eng-1", Profile: models.EngineerProfile{DayRate: 300}},
		BasePrice: base,
		Now:       pricingNow,
	}
}

func TestCalculatePriceRules(t *testing.T) {
	rules := models.DefaultPricingRules()

	tests := []struct {
		name      string
		mutate    func(pc *PriceContext)
		date      string
		wantRule  string
		wantFinal float64
	}{
		{
			name:      "no rule fires at list price",
			date:      "2026-03-06", // Friday, 2 days out
			wantFinal: 400,
		},
		{
			name: "cluster discount",
			date: "2026-03-06",
			mutate: func(pc *PriceContext) {
				pc.NearbyJobCount = 2
			},
			wantRule:  RuleCluster,
			wantFinal: 360, // 10% off
		},
		{
			name: "flexible date discount",
			date: "2026-03-06",
			mutate: func(pc *PriceContext) {
				pc.Request.Flexibility = models.FlexibilityFlexibleWeek
			},
			wantRule:  RuleFlexibleDate,
			wantFinal: 380, // 5% off
		},
		{
			name:      "same-day premium",
			date:      "2026-03-04",
			wantRule:  RuleUrgency,
			wantFinal: 480, // +20%
		},
		{
			name:      "next-day premium",
			date:      "2026-03-05",
			wantRule:  RuleUrgency,
			wantFinal: 440, // +10%
		},
		{
			name:      "off-peak Monday",
			date:      "2026-03-09",
			wantRule:  RuleOffPeak,
			wantFinal: 380, // 5% off
		},
		{
			name: "loyalty discount",
			date: "2026-03-06",
			mutate: func(pc *PriceContext) {
				pc.Customer = models.Customer{ID: "cust-1", TotalBookings: 6, CompletedBookings: 6}
			},
			wantRule:  RuleLoyalty,
			wantFinal: 380, // 5% off
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := priceContext(400, tt.date)
			if tt.mutate != nil {
				tt.mutate(&pc)
			}
			quote := CalculatePrice(pc, rules)

			assert.InDelta(t, tt.wantFinal, quote.FinalPrice, 0.01)
			if tt.wantRule == "" {
				assert.Empty(t, quote.Adjustments)
			} else {
				require.Len(t, quote.Adjustments, 1)
				assert.Equal(t, tt.wantRule, quote.Adjustments[0].Rule)
			}
		})
	}
}

func TestCalculatePriceDiscountsStack(t *testing.T) {
	rules := models.DefaultPricingRules()

	pc := priceContext(400, "2026-03-09") // Monday
	pc.NearbyJobCount = 3
	pc.Request.Flexibility = models.FlexibilityFlexibleWeek
	pc.Customer = models.Customer{ID: "cust-1", TotalBookings: 8, CompletedBookings: 8}

	quote := CalculatePrice(pc, rules)

	// 10% + 5% + 5% + 5% of base, additively.
	assert.InDelta(t, 300, quote.FinalPrice, 0.01)
	assert.InDelta(t, 100, quote.TotalDiscount, 0.01)
	assert.InDelta(t, 25, quote.EffectiveDiscountPercent, 0.01)
	assert.Len(t, quote.Adjustments, 4)
}

func TestCalculatePriceMarginFloorScalesDiscounts(t *testing.T) {
	rules := models.DefaultPricingRules()

	// Engineer half-day costs 150; floor = 150 * 1.15 = 172.50. Base 190
	// with 25% of stacked discounts would land at 142.50, below the floor.
	pc := priceContext(190, "2026-03-09")
	pc.NearbyJobCount = 3
	pc.Request.Flexibility = models.FlexibilityFlexibleWeek
	pc.Customer = models.Customer{ID: "cust-1", TotalBookings: 8, CompletedBookings: 8}

	quote := CalculatePrice(pc, rules)

	floor := 150 * (1 + rules.MinimumMarginPercent/100)
	assert.InDelta(t, floor, quote.FinalPrice, 0.01)
	assert.GreaterOrEqual(t, quote.MarginPercent, rules.MinimumMarginPercent-0.01)

	// The largest discount (cluster, 19.00) gives back first.
	for _, adj := range quote.Adjustments {
		if adj.Rule == RuleCluster {
			assert.Greater(t, adj.Amount, -19.0)
			assert.Contains(t, adj.Reason, "reduced to protect margin")
		}
		assert.NotEqual(t, RuleMarginFloor, adj.Rule)
	}
}

func TestCalculatePriceMarginFloorLiftsUnderwaterBase(t *testing.T) {
	rules := models.DefaultPricingRules()

	// Base below the floor even before discounts.
	pc := priceContext(100, "2026-03-06")
	quote := CalculatePrice(pc, rules)

	floor := 150 * (1 + rules.MinimumMarginPercent/100)
	assert.InDelta(t, floor, quote.FinalPrice, 0.01)

	require.Len(t, quote.Adjustments, 1)
	assert.Equal(t, RuleMarginFloor, quote.Adjustments[0].Rule)
	// A lift is not a discount.
	assert.Zero(t, quote.TotalDiscount)
	assert.Zero(t, quote.EffectiveDiscountPercent)
}

func TestCalculatePriceNeverBelowFloor(t *testing.T) {
	rules := models.DefaultPricingRules()

	// Sweep bases around the floor with every discount active; the invariant
	// must hold everywhere.
	for base := 50.0; base <= 500; base += 25 {
		pc := priceContext(base, "2026-03-09")
		pc.NearbyJobCount = 5
		pc.Request.Flexibility = models.FlexibilityFlexibleWeek
		pc.Customer = models.Customer{ID: "cust-1", TotalBookings: 20, CompletedBookings: 19}

		quote := CalculatePrice(pc, rules)
		floor := pc.EngineerCost() * (1 + rules.MinimumMarginPercent/100)
		assert.GreaterOrEqual(t, quote.FinalPrice, floor-0.01, "base %.0f", base)
	}
}

func TestEnforceMarginFloorKeepsPremiums(t *testing.T) {
	adjustments := []models.PriceAdjustment{
		{Rule: RuleUrgency, Percent: 20, Amount: 40},
		{Rule: RuleCluster, Percent: 10, Amount: -20},
	}
	out := enforceMarginFloor(200, 230, adjustments)

	// Only the discount gives back; the premium is untouched.
	for _, adj := range out {
		if adj.Rule == RuleUrgency {
			assert.InDelta(t, 40, adj.Amount, 0.001)
		}
		if adj.Rule == RuleCluster {
			assert.InDelta(t, -10, adj.Amount, 0.001)
		}
	}
}
