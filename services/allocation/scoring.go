package allocation

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"
	"fieldserve/utils"
)

// ScoringInputs carries the per-candidate evaluations the scorer folds into
// named factors. Every input is computed before scoring; the scorer itself
// is pure.
type ScoringInputs struct {
	Workload         models.WorkloadBalance
	Risk             models.CancellationRisk
	Quote            models.PriceQuote
	DistanceToSiteKm float64 // engineer base to site; negative when unknown
	MinMarginPercent float64
	Now              time.Time
}

const neutralScore = 50.0

// ScoreSlotAllocation combines customer, engineer and platform factors into
// one composite score per candidate. Every factor is normalized to 0-100;
// the composite is the party-weighted, factor-weighted sum and stays within
// [0, 100] for any valid ScoringWeights.
func ScoreSlotAllocation(slot models.ScheduleSlot, req models.BookingRequest, engineer models.EngineerWithProfile, weights models.ScoringWeights, in ScoringInputs) models.AllocationScore {
	customerScores := map[string]float64{
		models.FactorTimeMatch:          timeMatchScore(req, slot),
		models.FactorPriceValue:         priceValueScore(in.Quote),
		models.FactorEngineerExperience: clampScore(float64(engineer.Profile.YearsExperience) * 10),
	}
	engineerScores := map[string]float64{
		models.FactorTravelEfficiency: travelEfficiencyScore(engineer, in.DistanceToSiteKm),
		models.FactorWorkloadFit:      in.Workload.Score,
		models.FactorRouteDensity:     clampScore(float64(slot.NearbyJobCount) * 25),
	}
	platformScores := map[string]float64{
		models.FactorMargin:      marginScore(in.Quote.MarginPercent, in.MinMarginPercent),
		models.FactorRetention:   in.Risk.Score,
		models.FactorUtilization: utilizationScore(in.Now, slot.Date),
	}

	var factors []models.FactorScore
	var composite float64
	collect := func(party string, pw models.PartyWeights, scores map[string]float64) {
		for name, factorWeight := range pw.Factors {
			score, ok := scores[name]
			if !ok {
				score = neutralScore
			}
			weight := pw.Weight * factorWeight
			fs := models.FactorScore{
				Party:    party,
				Name:     name,
				Score:    score,
				Weight:   weight,
				Weighted: weight * score,
			}
			factors = append(factors, fs)
			composite += fs.Weighted
		}
	}
	collect(models.PartyCustomer, weights.Customer, customerScores)
	collect(models.PartyEngineer, weights.Engineer, engineerScores)
	collect(models.PartyPlatform, weights.Platform, platformScores)

	return models.AllocationScore{
		Composite: clampScore(composite),
		Factors:   factors,
	}
}

// timeMatchScore rewards slots close to the preferred date. With no
// preference every date scores a flat 70.
func timeMatchScore(req models.BookingRequest, slot models.ScheduleSlot) float64 {
	if req.PreferredDate == nil {
		return 70
	}
	day, err := time.Parse(models.DateLayout, slot.Date)
	if err != nil {
		return neutralScore
	}
	preferred := req.PreferredDate.Truncate(24 * time.Hour)
	diffDays := day.Sub(preferred).Hours() / 24
	if diffDays < 0 {
		diffDays = -diffDays
	}
	return clampScore(100 - diffDays*15)
}

// priceValueScore is neutral at list price, rising with net discount and
// falling with premiums.
func priceValueScore(quote models.PriceQuote) float64 {
	if quote.BasePrice <= 0 {
		return neutralScore
	}
	netPercent := (quote.BasePrice - quote.FinalPrice) / quote.BasePrice * 100
	return clampScore(neutralScore + netPercent*2.5)
}

// travelEfficiencyScore scores proximity of the site to the engineer's base
// against their preferred radius.
func travelEfficiencyScore(engineer models.EngineerWithProfile, distanceKm float64) float64 {
	if distanceKm < 0 {
		return neutralScore
	}
	radius := engineer.PreferredRadiusKm
	if radius <= 0 {
		radius = 30
	}
	return clampScore(100 * (1 - distanceKm/radius))
}

// marginScore scores the priced margin against the configured floor.
func marginScore(marginPercent, minMarginPercent float64) float64 {
	return clampScore(40 + (marginPercent-minMarginPercent)*1.5)
}

// utilizationScore favours near-term diary fill.
func utilizationScore(now time.Time, date string) float64 {
	days := leadTimeDays(now, date)
	if days < 0 {
		return 0
	}
	return clampScore(100 - float64(days)*5)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ScoreSlotAllocation evaluates one candidate against the supplied weight
// configuration, loading the workload, risk and pricing inputs it depends
// on.
func (s *DefaultAllocationService) ScoreSlotAllocation(ctx context.Context, slot models.ScheduleSlot, req models.BookingRequest, engineer models.EngineerWithProfile, weights models.ScoringWeights) (*models.AllocationScore, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	day, err := time.Parse(models.DateLayout, slot.Date)
	if err != nil {
		return nil, NewInvalidRequestError(fmt.Sprintf("bad slot date %q", slot.Date))
	}

	workload, err := s.CalculateWorkloadBalance(ctx, slot.EngineerID, day)
	if err != nil {
		return nil, err
	}
	risk, err := s.PredictCancellationRisk(ctx, req, slot)
	if err != nil {
		return nil, err
	}
	quote, err := s.CalculatePrice(ctx, req, slot)
	if err != nil {
		return nil, err
	}
	rules, err := s.ConfigSrc.PricingRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}

	distance := -1.0
	if site, err := s.Catalog.GetSite(ctx, req.SiteID); err == nil {
		if km, ok := utils.DistanceKm(engineer.BaseLocation, site.Location); ok {
			distance = km
		}
	}

	score := ScoreSlotAllocation(slot, req, engineer, weights, ScoringInputs{
		Workload:         *workload,
		Risk:             *risk,
		Quote:            *quote,
		DistanceToSiteKm: distance,
		MinMarginPercent: rules.MinimumMarginPercent,
		Now:              time.Now(),
	})
	return &score, nil
}
