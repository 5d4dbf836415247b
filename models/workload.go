package models

// EngineerWeekStats is one engineer's load for a single ISO week.
type EngineerWeekStats struct {
	EngineerID string  `bson:"engineer_id" json:"engineerId"`
	JobCount   int     `bson:"job_count" json:"jobCount"`
	Revenue    float64 `bson:"revenue" json:"revenue"`
	TravelKm   float64 `bson:"travel_km" json:"travelKm"`
}

// WorkloadBalance compares one engineer's near-term load against the cohort
// average for the ISO week containing the proposed date.
type WorkloadBalance struct {
	EngineerID        string  `json:"engineerId"`
	Date              string  `json:"date"`
	WeekJobCount      int     `json:"weekJobCount"`
	WeekRevenue       float64 `json:"weekRevenue"`
	WeekTravelKm      float64 `json:"weekTravelKm"`
	CohortAverage     float64 `json:"cohortAverage"`
	ComparedToAverage float64 `json:"comparedToAverage"`
	JobsOnDay         int     `json:"jobsOnDay"`
	Score             float64 `json:"score"` // 0-100
	IsOverloaded      bool    `json:"isOverloaded"`
	IsUnderloaded     bool    `json:"isUnderloaded"`
}
