package models

// Badge identifiers assigned by the presentation layer.
const (
	BadgeBestValue       = "BEST_VALUE"
	BadgeFastest         = "FASTEST"
	BadgeTopRated        = "TOP_RATED"
	BadgeClusterDiscount = "CLUSTER_DISCOUNT"
	BadgeEcoFriendly     = "ECO_FRIENDLY"
)

// PresentedSlot is the customer-facing view of one ranked candidate.
type PresentedSlot struct {
	Slot           ScheduleSlot `json:"slot"`
	EngineerName   string       `json:"engineerName"`
	Score          float64      `json:"score"` // customer-focused composite
	Price          float64      `json:"price"`
	OriginalPrice  float64      `json:"originalPrice"`
	DiscountAmount float64      `json:"discountAmount"`
	Badges         []string     `json:"badges"`
	Explanation    string       `json:"explanation"`
}

// SavingsBreakdown apportions the presented slots' total savings.
type SavingsBreakdown struct {
	Total   float64 `json:"total"`
	Cluster float64 `json:"cluster"`
	Flex    float64 `json:"flex"`
	Other   float64 `json:"other"`
}

// FlexibilityPrompt suggests an alternative date when it would save the
// customer at least the configured percentage versus their preferred date.
type FlexibilityPrompt struct {
	Message        string  `json:"message"`
	SuggestedDate  string  `json:"suggestedDate"`
	SavingsAmount  float64 `json:"savingsAmount"`
	SavingsPercent float64 `json:"savingsPercent"`
}

// SlotPresentation is the full response handed to the UI layer.
type SlotPresentation struct {
	Slots             []PresentedSlot    `json:"slots"`
	Savings           SavingsBreakdown   `json:"savings"`
	FlexibilityPrompt *FlexibilityPrompt `json:"flexibilityPrompt,omitempty"`
}
