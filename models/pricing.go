package models

import "fmt"

// ClusterDiscountRule discounts slots that join an existing same-day cluster
// of nearby jobs.
type ClusterDiscountRule struct {
	Enabled         bool    `bson:"enabled" json:"enabled"`
	MinNearbyJobs   int     `bson:"min_nearby_jobs" json:"minNearbyJobs"`
	RadiusKm        float64 `bson:"radius_km" json:"radiusKm"`
	DiscountPercent float64 `bson:"discount_percent" json:"discountPercent"`
}

// FlexibleDateDiscountRule rewards customers who accept a flexible week
// instead of an exact date.
type FlexibleDateDiscountRule struct {
	Enabled         bool    `bson:"enabled" json:"enabled"`
	DiscountPercent float64 `bson:"discount_percent" json:"discountPercent"`
}

// UrgencyPremiumRule charges a premium for short-notice bookings.
// SameDayPercent must be >= NextDayPercent.
type UrgencyPremiumRule struct {
	Enabled        bool    `bson:"enabled" json:"enabled"`
	DaysThreshold  int     `bson:"days_threshold" json:"daysThreshold"`
	SameDayPercent float64 `bson:"same_day_percent" json:"sameDayPercent"`
	NextDayPercent float64 `bson:"next_day_percent" json:"nextDayPercent"`
}

// OffPeakDiscountRule discounts slots on configured quiet weekdays.
type OffPeakDiscountRule struct {
	Enabled         bool     `bson:"enabled" json:"enabled"`
	Days            []string `bson:"days" json:"days"` // e.g. "Monday"
	DiscountPercent float64  `bson:"discount_percent" json:"discountPercent"`
}

// LoyaltyDiscountRule discounts repeat customers.
type LoyaltyDiscountRule struct {
	Enabled         bool    `bson:"enabled" json:"enabled"`
	MinBookings     int     `bson:"min_bookings" json:"minBookings"`
	DiscountPercent float64 `bson:"discount_percent" json:"discountPercent"`
}

// PricingRules is the named, versioned pricing configuration. Rules are
// data, editable without redeploying the engine.
type PricingRules struct {
	Name                 string                   `bson:"name" json:"name"`
	Version              int                      `bson:"version" json:"version"`
	Cluster              ClusterDiscountRule      `bson:"cluster" json:"cluster"`
	FlexibleDate         FlexibleDateDiscountRule `bson:"flexible_date" json:"flexibleDate"`
	Urgency              UrgencyPremiumRule       `bson:"urgency" json:"urgency"`
	OffPeak              OffPeakDiscountRule      `bson:"off_peak" json:"offPeak"`
	Loyalty              LoyaltyDiscountRule      `bson:"loyalty" json:"loyalty"`
	MinimumMarginPercent float64                  `bson:"minimum_margin_percent" json:"minimumMarginPercent"`
}

// Validate fails fast on configurations the engine cannot honour.
func (r PricingRules) Validate() error {
	if r.MinimumMarginPercent < 0 || r.MinimumMarginPercent >= 100 {
		return fmt.Errorf("pricing rules %q: minimum margin %.1f%% out of range", r.Name, r.MinimumMarginPercent)
	}
	if r.Urgency.Enabled && r.Urgency.SameDayPercent < r.Urgency.NextDayPercent {
		return fmt.Errorf("pricing rules %q: same-day premium %.1f%% below next-day %.1f%%",
			r.Name, r.Urgency.SameDayPercent, r.Urgency.NextDayPercent)
	}
	for _, rule := range []struct {
		name    string
		enabled bool
		pct     float64
	}{
		{"cluster", r.Cluster.Enabled, r.Cluster.DiscountPercent},
		{"flexible_date", r.FlexibleDate.Enabled, r.FlexibleDate.DiscountPercent},
		{"off_peak", r.OffPeak.Enabled, r.OffPeak.DiscountPercent},
		{"loyalty", r.Loyalty.Enabled, r.Loyalty.DiscountPercent},
	} {
		if rule.enabled && (rule.pct < 0 || rule.pct > 100) {
			return fmt.Errorf("pricing rules %q: %s discount %.1f%% out of range", r.Name, rule.name, rule.pct)
		}
	}
	return nil
}

// DefaultPricingRules returns the documented platform defaults.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		Name:    "platform-default",
		Version: 1,
		Cluster: ClusterDiscountRule{
			Enabled:         true,
			MinNearbyJobs:   2,
			RadiusKm:        5,
			DiscountPercent: 10,
		},
		FlexibleDate: FlexibleDateDiscountRule{
			Enabled:         true,
			DiscountPercent: 5,
		},
		Urgency: UrgencyPremiumRule{
			Enabled:        true,
			DaysThreshold:  1,
			SameDayPercent: 20,
			NextDayPercent: 10,
		},
		OffPeak: OffPeakDiscountRule{
			Enabled:         true,
			Days:            []string{"Monday", "Tuesday"},
			DiscountPercent: 5,
		},
		Loyalty: LoyaltyDiscountRule{
			Enabled:         true,
			MinBookings:     5,
			DiscountPercent: 5,
		},
		MinimumMarginPercent: 15,
	}
}

// PriceAdjustment is one applied rule: a discount carries a negative Amount,
// a premium a positive one.
type PriceAdjustment struct {
	Rule    string  `json:"rule"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason"`
}

// PriceQuote is the pricing engine's output.
type PriceQuote struct {
	BasePrice                float64           `json:"basePrice"`
	Adjustments              []PriceAdjustment `json:"adjustments"`
	TotalDiscount            float64           `json:"totalDiscount"` // positive sum of discounts
	EffectiveDiscountPercent float64           `json:"effectiveDiscountPercent"`
	FinalPrice               float64           `json:"finalPrice"`
	EngineerCost             float64           `json:"engineerCost"`
	MarginPercent            float64           `json:"marginPercent"`
}
