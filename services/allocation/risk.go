package allocation

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"
)

const (
	// defaultBaseCancellationRate applies when the 90-day window has no data.
	defaultBaseCancellationRate = 0.08
	// maxCancellationProbability clamps the aggregated probability.
	maxCancellationProbability = 0.8
	// prepaidRiskReduction is the probability reduction for paid bookings.
	prepaidRiskReduction = 0.7
)

// RiskInputs carries the historical snapshots the predictor consumes. All
// rates come from incrementally maintained aggregates; the predictor itself
// never queries anything.
type RiskInputs struct {
	Stats    models.CancellationStats
	Customer models.Customer
	Site     models.SiteStats
	Now      time.Time
}

// PredictCancellationRisk estimates the probability the slot, once booked,
// will later be cancelled, with named factors for explanation.
func PredictCancellationRisk(req models.BookingRequest, slot models.ScheduleSlot, in RiskInputs) models.CancellationRisk {
	base := defaultBaseCancellationRate
	if in.Stats.Samples > 0 {
		base = in.Stats.BaseRate
	}

	factors := []models.RiskFactor{{
		Factor: "Historical base rate",
		Impact: 0,
		Value:  fmt.Sprintf("%.1f%%", base*100),
	}}
	probability := base

	// Customer history.
	customerRate := in.Customer.CancellationRate()
	switch {
	case in.Customer.IsNew():
		factors = append(factors, models.RiskFactor{Factor: "New customer", Impact: 0.05, Value: "no booking history"})
	case customerRate > 0.20:
		factors = append(factors, models.RiskFactor{
			Factor: "High customer cancellation rate",
			Impact: 0.15,
			Value:  fmt.Sprintf("%.0f%%", customerRate*100),
		})
	case in.Customer.TotalBookings > 5 && customerRate < 0.05:
		factors = append(factors, models.RiskFactor{
			Factor: "Reliable customer",
			Impact: -0.05,
			Value:  fmt.Sprintf("%d bookings", in.Customer.TotalBookings),
		})
	}

	// Lead time.
	leadDays := leadTimeDays(in.Now, slot.Date)
	switch {
	case leadDays > 14:
		factors = append(factors, models.RiskFactor{Factor: "Long lead time", Impact: 0.08, Value: fmt.Sprintf("%d days", leadDays)})
	case leadDays > 7:
		factors = append(factors, models.RiskFactor{Factor: "Moderate lead time", Impact: 0.03, Value: fmt.Sprintf("%d days", leadDays)})
	case leadDays < 3:
		factors = append(factors, models.RiskFactor{Factor: "Short lead time", Impact: -0.08, Value: fmt.Sprintf("%d days", leadDays)})
	}

	// Day-of-week deviation, half-weighted.
	if day, err := time.Parse(models.DateLayout, slot.Date); err == nil {
		if sample, ok := in.Stats.ByWeekday[day.Weekday().String()]; ok && sample.Samples > 0 {
			deviation := (sample.Rate - base) * 0.5
			if deviation != 0 {
				factors = append(factors, models.RiskFactor{
					Factor: "Day-of-week pattern",
					Impact: deviation,
					Value:  day.Weekday().String(),
				})
			}
		}
	}

	// Service-type deviation: additive only when clearly elevated, and only
	// with a meaningful sample.
	if sample, ok := in.Stats.ByService[req.ServiceID]; ok && sample.Samples >= 10 && sample.Rate > 1.3*base {
		factors = append(factors, models.RiskFactor{
			Factor: "Service cancellation pattern",
			Impact: (sample.Rate - base) * 0.3,
			Value:  fmt.Sprintf("%.0f%% for this service", sample.Rate*100),
		})
	}

	// Time-slot deviation: needs a larger sample and a non-trivial gap.
	if sample, ok := in.Stats.BySlot[slot.Slot]; ok && sample.Samples >= 20 {
		deviation := sample.Rate - base
		if deviation > 0.03 || deviation < -0.03 {
			factors = append(factors, models.RiskFactor{
				Factor: "Time-slot pattern",
				Impact: deviation * 0.2,
				Value:  slot.Slot,
			})
		}
	}

	// Site history.
	siteRate := in.Site.CancellationRate()
	if siteRate > 0.25 {
		factors = append(factors, models.RiskFactor{
			Factor: "High site cancellation rate",
			Impact: 0.10,
			Value:  fmt.Sprintf("%.0f%%", siteRate*100),
		})
	} else if in.Site.Cancellations == 0 && in.Site.TotalBookings >= 5 {
		factors = append(factors, models.RiskFactor{
			Factor: "Reliable site",
			Impact: -0.03,
			Value:  fmt.Sprintf("%d bookings, no cancellations", in.Site.TotalBookings),
		})
	}

	for _, f := range factors {
		probability += f.Impact
	}
	probability = clampProbability(probability)

	risk := models.CancellationRisk{
		Probability: probability,
		Score:       100 * (1 - probability),
		Tier:        riskTier(probability),
		Factors:     factors,
	}
	risk.Mitigations = buildMitigations(risk, in.Customer, leadDays, customerRate)
	return risk
}

// ApplyPrepaidAdjustment reduces the probability for a paid booking and
// clears mitigations: a paid booking needs no further chasing.
func ApplyPrepaidAdjustment(risk models.CancellationRisk) models.CancellationRisk {
	adjusted := risk
	newProbability := clampProbability(risk.Probability * (1 - prepaidRiskReduction))
	adjusted.Factors = append(append([]models.RiskFactor{}, risk.Factors...), models.RiskFactor{
		Factor: "Prepaid booking",
		Impact: newProbability - risk.Probability,
		Value:  "paid in full",
	})
	adjusted.Probability = newProbability
	adjusted.Score = 100 * (1 - newProbability)
	adjusted.Tier = riskTier(newProbability)
	adjusted.Mitigations = nil
	return adjusted
}

func buildMitigations(risk models.CancellationRisk, customer models.Customer, leadDays int, customerRate float64) []string {
	var mitigations []string
	if risk.Tier != models.RiskTierLow {
		mitigations = append(mitigations, "Require a deposit at booking")
	}
	if leadDays > 14 {
		mitigations = append(mitigations, "Schedule reminder and confirmation calls before the visit")
	}
	if customerRate > 0.20 {
		mitigations = append(mitigations,
			"Call the customer to confirm the appointment",
			"Request full prepayment")
	}
	if customer.IsNew() {
		mitigations = append(mitigations, "Send the new-customer welcome flow with booking confirmation")
	}
	if risk.Tier == models.RiskTierHigh {
		mitigations = append(mitigations, "Hold overbooking protection for this slot")
	}
	return mitigations
}

func riskTier(probability float64) string {
	switch {
	case probability <= 0.10:
		return models.RiskTierLow
	case probability >= 0.25:
		return models.RiskTierHigh
	default:
		return models.RiskTierMedium
	}
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > maxCancellationProbability {
		return maxCancellationProbability
	}
	return p
}

func leadTimeDays(now time.Time, date string) int {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}

// PredictCancellationRisk loads the historical snapshots and runs the
// predictor. Missing customer or site history degrades to empty snapshots
// rather than erroring.
func (s *DefaultAllocationService) PredictCancellationRisk(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot) (*models.CancellationRisk, error) {
	stats, err := s.Bookings.CancellationStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation stats: %w", err)
	}

	customer := models.Customer{ID: req.CustomerID}
	if c, err := s.Catalog.GetCustomer(ctx, req.CustomerID); err == nil {
		customer = *c
	}
	site := models.SiteStats{SiteID: req.SiteID}
	if st, err := s.Bookings.SiteStats(ctx, req.SiteID); err == nil {
		site = *st
	}

	risk := PredictCancellationRisk(req, slot, RiskInputs{
		Stats:    *stats,
		Customer: customer,
		Site:     site,
		Now:      time.Now(),
	})
	return &risk, nil
}
