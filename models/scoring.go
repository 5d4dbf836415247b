package models

import (
	"fmt"
	"math"
	"sort"
)

// Factor names used by the multi-party scorer.
const (
	FactorTimeMatch          = "time_match"
	FactorPriceValue         = "price_value"
	FactorEngineerExperience = "engineer_experience"

	FactorTravelEfficiency = "travel_efficiency"
	FactorWorkloadFit      = "workload_fit"
	FactorRouteDensity     = "route_density"

	FactorMargin      = "margin"
	FactorRetention   = "retention"
	FactorUtilization = "utilization"
)

// Scoring parties.
const (
	PartyCustomer = "customer"
	PartyEngineer = "engineer"
	PartyPlatform = "platform"
)

// PartyWeights holds one party's top-level weight plus its named sub-factor
// weights. Sub-factor weights must sum to 1.0.
type PartyWeights struct {
	Weight  float64            `bson:"weight" json:"weight"`
	Factors map[string]float64 `bson:"factors" json:"factors"`
}

// ScoringWeights is the validated scoring configuration. The three party
// weights must sum to 1.0. Use NewScoringWeights so the invariant is
// enforced at construction, not discovered per request.
type ScoringWeights struct {
	Name     string       `bson:"name" json:"name"`
	Version  int          `bson:"version" json:"version"`
	Customer PartyWeights `bson:"customer" json:"customer"`
	Engineer PartyWeights `bson:"engineer" json:"engineer"`
	Platform PartyWeights `bson:"platform" json:"platform"`
}

const weightEpsilon = 1e-6

// NewScoringWeights validates and returns a scoring configuration.
func NewScoringWeights(name string, version int, customer, engineer, platform PartyWeights) (ScoringWeights, error) {
	w := ScoringWeights{Name: name, Version: version, Customer: customer, Engineer: engineer, Platform: platform}
	if err := w.Validate(); err != nil {
		return ScoringWeights{}, err
	}
	return w, nil
}

// Validate enforces the sum-to-1.0 invariants on party and factor weights.
func (w ScoringWeights) Validate() error {
	total := w.Customer.Weight + w.Engineer.Weight + w.Platform.Weight
	if math.Abs(total-1.0) > weightEpsilon {
		return fmt.Errorf("scoring weights %q: party weights sum to %.4f, want 1.0", w.Name, total)
	}
	for party, pw := range map[string]PartyWeights{
		PartyCustomer: w.Customer,
		PartyEngineer: w.Engineer,
		PartyPlatform: w.Platform,
	} {
		if len(pw.Factors) == 0 {
			return fmt.Errorf("scoring weights %q: party %s has no factor weights", w.Name, party)
		}
		var sum float64
		for name, fw := range pw.Factors {
			if fw < 0 {
				return fmt.Errorf("scoring weights %q: factor %s/%s is negative", w.Name, party, name)
			}
			sum += fw
		}
		if math.Abs(sum-1.0) > weightEpsilon {
			return fmt.Errorf("scoring weights %q: party %s factor weights sum to %.4f, want 1.0", w.Name, party, sum)
		}
	}
	return nil
}

// DefaultScoringWeights balances all three parties. Used for operational
// allocation decisions.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Name:    "platform-default",
		Version: 1,
		Customer: PartyWeights{Weight: 0.35, Factors: map[string]float64{
			FactorTimeMatch:          0.40,
			FactorPriceValue:         0.35,
			FactorEngineerExperience: 0.25,
		}},
		Engineer: PartyWeights{Weight: 0.30, Factors: map[string]float64{
			FactorTravelEfficiency: 0.40,
			FactorWorkloadFit:      0.35,
			FactorRouteDensity:     0.25,
		}},
		Platform: PartyWeights{Weight: 0.35, Factors: map[string]float64{
			FactorMargin:      0.40,
			FactorRetention:   0.30,
			FactorUtilization: 0.30,
		}},
	}
}

// CustomerFocusedWeights emphasises the customer party. Used only for
// presentation ranking, never for operational allocation.
func CustomerFocusedWeights() ScoringWeights {
	w := DefaultScoringWeights()
	w.Name = "customer-focused"
	w.Customer.Weight = 0.50
	w.Engineer.Weight = 0.25
	w.Platform.Weight = 0.25
	return w
}

// FactorScore is one named, normalized (0-100) factor with its weighted
// contribution to the composite.
type FactorScore struct {
	Party    string  `json:"party"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`  // 0-100
	Weight   float64 `json:"weight"` // partyWeight * factorWeight
	Weighted float64 `json:"weighted"`
}

// AllocationScore is the scorer's output for one candidate slot.
type AllocationScore struct {
	Composite float64       `json:"composite"` // 0-100
	Factors   []FactorScore `json:"factors"`
}

// TopFactors extracts the highest-magnitude strengths (scores well above
// neutral) and concerns (well below), up to n of each, for human-readable
// explanations.
func (s AllocationScore) TopFactors(n int) (strengths, concerns []FactorScore) {
	const neutral = 50.0
	sorted := make([]FactorScore, len(s.Factors))
	copy(sorted, s.Factors)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Score-neutral)*sorted[i].Weight > math.Abs(sorted[j].Score-neutral)*sorted[j].Weight
	})
	for _, f := range sorted {
		if f.Score >= 70 && len(strengths) < n {
			strengths = append(strengths, f)
		}
		if f.Score <= 40 && len(concerns) < n {
			concerns = append(concerns, f)
		}
	}
	return strengths, concerns
}
