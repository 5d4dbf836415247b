package models

// Site is a customer location visited by engineers.
type Site struct {
	ID         string   `bson:"id" json:"id"`
	CustomerID string   `bson:"customer_id" json:"customerId"`
	Name       string   `bson:"name" json:"name"`
	Postcode   string   `bson:"postcode" json:"postcode"`
	Location   GeoPoint `bson:"location" json:"location"`
}

// Customer carries the loyalty and reliability metrics the pricing and risk
// modules consume.
type Customer struct {
	ID                string `bson:"id" json:"id"`
	Name              string `bson:"name" json:"name"`
	TotalBookings     int    `bson:"total_bookings" json:"totalBookings"`
	CompletedBookings int    `bson:"completed_bookings" json:"completedBookings"`
	CancelledBookings int    `bson:"cancelled_bookings" json:"cancelledBookings"`
}

// IsNew reports whether the customer has no booking history at all.
func (c Customer) IsNew() bool {
	return c.TotalBookings == 0
}

// CancellationRate returns the customer's historical cancellation rate,
// zero when there is no history.
func (c Customer) CancellationRate() float64 {
	if c.TotalBookings == 0 {
		return 0
	}
	return float64(c.CancelledBookings) / float64(c.TotalBookings)
}
