package models

// RouteJob is one confirmed stop on an engineer's day: the booking plus its
// site coordinates, as loaded by the repository.
type RouteJob struct {
	BookingID string   `bson:"booking_id" json:"bookingId"`
	SiteID    string   `bson:"site_id" json:"siteId"`
	Slot      string   `bson:"slot" json:"slot"`
	Postcode  string   `bson:"postcode" json:"postcode"`
	Location  GeoPoint `bson:"location" json:"location"`
}

// RouteStop is one sequenced stop with travel from the previous stop.
type RouteStop struct {
	Sequence      int      `json:"sequence"`
	BookingID     string   `json:"bookingId"`
	SiteID        string   `json:"siteId"`
	Postcode      string   `json:"postcode"`
	Location      GeoPoint `json:"location"`
	TravelKm      float64  `json:"travelKm"` // from the previous stop
	TravelMinutes float64  `json:"travelMinutes"`
}

// Route efficiency labels.
const (
	RouteOptimized      = "optimized"       // rating >= 80
	RouteModerate       = "moderate"        // 50-79
	RouteNeedsAttention = "needs_attention" // < 50
)

// OptimizedRoute is a day's stops reordered to reduce total travel.
type OptimizedRoute struct {
	EngineerID      string      `json:"engineerId"`
	Date            string      `json:"date"`
	Stops           []RouteStop `json:"stops"`
	TotalKm         float64     `json:"totalKm"`
	TotalMinutes    float64     `json:"totalMinutes"`
	EfficiencyScore float64     `json:"efficiencyScore"` // 0-100
	EfficiencyLabel string      `json:"efficiencyLabel"`
}
