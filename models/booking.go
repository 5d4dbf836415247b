package models

import "time"

// Flexibility modes for a booking request.
const (
	FlexibilityExactDate    = "exact_date"
	FlexibilityFlexibleWeek = "flexible_week"
)

// BookingRequest is the immutable input to the allocation core.
// It is created by the caller and never mutated downstream.
type BookingRequest struct {
	CustomerID    string     `json:"customerId"`
	SiteID        string     `json:"siteId"`
	ServiceID     string     `json:"serviceId"`
	EstimatedQty  int        `json:"estimatedQty"`
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	Flexibility   string     `json:"flexibility"` // "exact_date" or "flexible_week"
}

// IsFlexible reports whether the customer accepted a non-exact date.
func (r BookingRequest) IsFlexible() bool {
	return r.Flexibility == FlexibilityFlexibleWeek
}

// Booking represents a committed booking record.
type Booking struct {
	ID           string    `bson:"id" json:"id"`
	EngineerID   string    `bson:"engineer_id" json:"engineerId"`
	CustomerID   string    `bson:"customer_id" json:"customerId"`
	SiteID       string    `bson:"site_id" json:"siteId"`
	ServiceID    string    `bson:"service_id" json:"serviceId"`
	Date         string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	Slot         string    `bson:"slot" json:"slot"` // "AM" or "PM"
	Status       string    `bson:"status" json:"status"`
	TotalPrice   float64   `bson:"total_price" json:"totalPrice"`
	Prepaid      bool      `bson:"prepaid" json:"prepaid"`
	EstimatedQty int       `bson:"estimated_qty" json:"estimatedQty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	CancelledAt  time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
}

// Booking status values.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Unavailability is a recorded block on an engineer's diary.
type Unavailability struct {
	EngineerID string `bson:"engineer_id" json:"engineerId"`
	Date       string `bson:"date" json:"date"`
	Slot       string `bson:"slot,omitempty" json:"slot,omitempty"` // empty blocks the whole day
	Reason     string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Blocks reports whether this unavailability covers the given date/slot pair.
func (u Unavailability) Blocks(date, slot string) bool {
	if u.Date != date {
		return false
	}
	return u.Slot == "" || u.Slot == slot
}
