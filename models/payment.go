package models

import "time"

// DepositRequest asks for an up-front deposit against a committed booking.
// The amount is never client-supplied; it is sized from the booking's price
// and its cancellation-risk tier.
type DepositRequest struct {
	BookingID  string `json:"bookingId"`
	CustomerID string `json:"customerId"`
	Currency   string `json:"currency"` // defaults to "gbp"
}

// DepositReceipt records the outcome of a deposit collection.
type DepositReceipt struct {
	ReceiptID string    `json:"receiptId"`
	BookingID string    `json:"bookingId"`
	PaymentID string    `json:"paymentId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
