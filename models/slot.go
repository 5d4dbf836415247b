package models

// ScheduleSlot is a candidate assignment of one engineer to one half-day
// window. Candidates are produced by the slot generator and consumed
// read-only by scoring, pricing and presentation.
// A committed booking is uniquely identified by (engineerId, date, slot).
type ScheduleSlot struct {
	ID                   string  `json:"id"`
	Date                 string  `json:"date"` // "YYYY-MM-DD"
	Slot                 string  `json:"slot"` // "AM" or "PM"
	EngineerID           string  `json:"engineerId"`
	StartTime            string  `json:"startTime"` // "HH:MM"
	EndTime              string  `json:"endTime"`
	EstimatedPrice       float64 `json:"estimatedPrice"`
	EstimatedDuration    int     `json:"estimatedDuration"` // minutes
	IsClusterOpportunity bool    `json:"isClusterOpportunity"`
	NearbyJobCount       int     `json:"nearbyJobCount"`
}
