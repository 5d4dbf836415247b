package models

// Risk tiers.
const (
	RiskTierLow    = "low"
	RiskTierMedium = "medium"
	RiskTierHigh   = "high"
)

// RiskFactor is one named, signed adjustment to the cancellation probability.
type RiskFactor struct {
	Factor string  `json:"factor"`
	Impact float64 `json:"impact"` // signed probability delta
	Value  string  `json:"value"`  // display value, e.g. "20 days"
}

// CancellationRisk aggregates risk factors into a clamped probability,
// a 0-100 score, a tier and suggested mitigation actions.
type CancellationRisk struct {
	Probability float64      `json:"probability"` // clamped to [0, 0.8]
	Score       float64      `json:"score"`       // 100 * (1 - probability)
	Tier        string       `json:"tier"`
	Factors     []RiskFactor `json:"factors"`
	Mitigations []string     `json:"mitigations"`
}

// RateSample is an observed cancellation rate with its sample size.
type RateSample struct {
	Rate    float64 `bson:"rate" json:"rate"`
	Samples int     `bson:"samples" json:"samples"`
}

// CancellationStats is the rolling 90-day aggregate snapshot consumed by the
// risk predictor. It is maintained incrementally (and cached per request)
// so factor evaluation never rescans the booking history.
type CancellationStats struct {
	BaseRate  float64               `bson:"base_rate" json:"baseRate"`
	Samples   int                   `bson:"samples" json:"samples"`
	ByWeekday map[string]RateSample `bson:"by_weekday" json:"byWeekday"` // "Monday"...
	ByService map[string]RateSample `bson:"by_service" json:"byService"` // service type
	BySlot    map[string]RateSample `bson:"by_slot" json:"bySlot"`       // "AM"/"PM"
}

// SiteStats is the per-site booking history snapshot.
type SiteStats struct {
	SiteID        string `bson:"site_id" json:"siteId"`
	TotalBookings int    `bson:"total_bookings" json:"totalBookings"`
	Cancellations int    `bson:"cancellations" json:"cancellations"`
}

// CancellationRate returns the site's historical cancellation rate.
func (s SiteStats) CancellationRate() float64 {
	if s.TotalBookings == 0 {
		return 0
	}
	return float64(s.Cancellations) / float64(s.TotalBookings)
}

// RiskSummary is the per-booking output of the batch risk summariser.
type RiskSummary struct {
	BookingID   string  `bson:"booking_id" json:"bookingId"`
	Probability float64 `bson:"probability" json:"probability"`
	Tier        string  `bson:"tier" json:"tier"`
}
