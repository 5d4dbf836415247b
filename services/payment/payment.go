package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fieldserve/database/repository"
	"fieldserve/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Deposit percentages by cancellation-risk tier. Low-risk bookings are not
// asked for a deposit at all.
const (
	depositPercentHigh   = 20.0
	depositPercentMedium = 10.0
)

// ErrDepositNotRequired reports a booking whose risk tier does not warrant
// an up-front deposit.
var ErrDepositNotRequired = errors.New("no deposit required for this booking")

// DepositHandler collects up-front deposits against committed bookings.
type DepositHandler interface {
	CollectDeposit(ctx context.Context, req models.DepositRequest) (*models.DepositReceipt, error)
}

// RiskAssessor exposes the current cancellation-risk summary for a
// committed booking. The allocation service satisfies it.
type RiskAssessor interface {
	AssessBookingRisk(ctx context.Context, bookingID string) (*models.RiskSummary, error)
}

type StripeDepositHandler struct {
	bookings repository.BookingRepository
	risk     RiskAssessor
	logger   *zap.Logger
}

func NewStripeDepositHandler(bookings repository.BookingRepository, risk RiskAssessor, logger *zap.Logger) *StripeDepositHandler {
	return &StripeDepositHandler{bookings: bookings, risk: risk, logger: logger}
}

// DepositFor returns the deposit to request for a booking at the given price
// and risk tier. Zero means no deposit is warranted.
func DepositFor(finalPrice float64, riskTier string) float64 {
	var pct float64
	switch riskTier {
	case models.RiskTierHigh:
		pct = depositPercentHigh
	case models.RiskTierMedium:
		pct = depositPercentMedium
	default:
		return 0
	}
	return math.Round(finalPrice*pct) / 100
}

// depositAmount sizes the deposit from the booking's committed price and
// its current risk tier.
func (h *StripeDepositHandler) depositAmount(ctx context.Context, booking models.Booking) (float64, error) {
	summary, err := h.risk.AssessBookingRisk(ctx, booking.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to assess cancellation risk: %w", err)
	}
	amount := DepositFor(booking.TotalPrice, summary.Tier)
	if amount <= 0 {
		return 0, ErrDepositNotRequired
	}
	return amount, nil
}

// CollectDeposit sizes the deposit from the booking's price and risk tier,
// creates a payment intent for it and, once the intent is live, flags the
// booking as prepaid so the risk model can apply the prepaid reduction.
func (h *StripeDepositHandler) CollectDeposit(ctx context.Context, req models.DepositRequest) (*models.DepositReceipt, error) {
	if err := validateDeposit(req); err != nil {
		return nil, fmt.Errorf("invalid deposit request: %w", err)
	}

	booking, err := h.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", req.BookingID, err)
	}
	if booking.CustomerID != req.CustomerID {
		return nil, errors.New("booking belongs to a different customer")
	}

	amount, err := h.depositAmount(ctx, *booking)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyGBP)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Booking deposit for %s", req.BookingID)),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("customer_id", req.CustomerID)

	intent, err := paymentintent.New(params)
	if err != nil {
		h.logger.Error("deposit intent creation failed",
			zap.String("bookingId", req.BookingID), zap.Error(err))
		return nil, fmt.Errorf("failed to create deposit intent: %w", err)
	}

	if err := h.bookings.MarkPrepaid(ctx, req.BookingID); err != nil {
		// The intent exists; surface the inconsistency rather than hide it.
		h.logger.Error("failed to flag booking as prepaid",
			zap.String("bookingId", req.BookingID),
			zap.String("paymentId", intent.ID), zap.Error(err))
		return nil, fmt.Errorf("deposit taken but booking update failed: %w", err)
	}

	receipt := &models.DepositReceipt{
		ReceiptID: uuid.New().String(),
		BookingID: req.BookingID,
		PaymentID: intent.ID,
		Amount:    amount,
		Currency:  currency,
		Status:    string(intent.Status),
		CreatedAt: time.Now(),
	}
	h.logger.Info("deposit collected",
		zap.String("bookingId", req.BookingID),
		zap.String("paymentId", intent.ID),
		zap.Float64("amount", amount))
	return receipt, nil
}

func validateDeposit(req models.DepositRequest) error {
	if req.BookingID == "" {
		return errors.New("missing booking ID")
	}
	if req.CustomerID == "" {
		return errors.New("missing customer ID")
	}
	return nil
}
