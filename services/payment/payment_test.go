package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fieldserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBookingStore struct {
	bookings map[string]models.Booking
	prepaid  map[string]bool
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	return &b, nil
}

func (f *fakeBookingStore) MarkPrepaid(_ context.Context, bookingID string) error {
	f.prepaid[bookingID] = true
	return nil
}

// The deposit flow only reads and flags bookings; the aggregate queries are
// never reached.
func (f *fakeBookingStore) WeekStats(context.Context, string, string, string) (*models.EngineerWeekStats, error) {
	return &models.EngineerWeekStats{}, nil
}
func (f *fakeBookingStore) CohortAverage(context.Context, string, string) (float64, error) {
	return 0, nil
}
func (f *fakeBookingStore) CountOnDay(context.Context, string, string) (int, error) { return 0, nil }
func (f *fakeBookingStore) HasConflict(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (f *fakeBookingStore) CountNearby(context.Context, string, models.GeoPoint, float64) (int, error) {
	return 0, nil
}
func (f *fakeBookingStore) JobsForDay(context.Context, string, string) ([]models.RouteJob, error) {
	return nil, nil
}
func (f *fakeBookingStore) CancellationStats(context.Context) (*models.CancellationStats, error) {
	return &models.CancellationStats{}, nil
}
func (f *fakeBookingStore) SiteStats(context.Context, string) (*models.SiteStats, error) {
	return &models.SiteStats{}, nil
}
func (f *fakeBookingStore) Commit(context.Context, *models.Booking) error { return nil }
func (f *fakeBookingStore) ListUpcoming(context.Context, int) ([]models.Booking, error) {
	return nil, nil
}

type fakeRiskAssessor struct {
	tiers map[string]string
}

func (f *fakeRiskAssessor) AssessBookingRisk(_ context.Context, bookingID string) (*models.RiskSummary, error) {
	tier, ok := f.tiers[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	return &models.RiskSummary{BookingID: bookingID, Tier: tier}, nil
}

func newTestHandler() (*StripeDepositHandler, *fakeBookingStore, *fakeRiskAssessor) {
	store := &fakeBookingStore{
		bookings: map[string]models.Booking{},
		prepaid:  map[string]bool{},
	}
	risk := &fakeRiskAssessor{tiers: map[string]string{}}
	return NewStripeDepositHandler(store, risk, zap.NewNop()), store, risk
}

func TestDepositFor(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		tier  string
		want  float64
	}{
		{"high tier takes 20 percent", 400, models.RiskTierHigh, 80},
		{"medium tier takes 10 percent", 400, models.RiskTierMedium, 40},
		{"low tier takes nothing", 400, models.RiskTierLow, 0},
		{"unknown tier takes nothing", 400, "severe", 0},
		{"rounds to the penny", 123.456, models.RiskTierMedium, 12.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DepositFor(tt.price, tt.tier), 1e-9)
		})
	}
}

func TestDepositAmountSizedByRiskTier(t *testing.T) {
	h, store, risk := newTestHandler()
	store.bookings["bk-1"] = models.Booking{ID: "bk-1", CustomerID: "cust-1", TotalPrice: 400}
	risk.tiers["bk-1"] = models.RiskTierHigh

	amount, err := h.depositAmount(context.Background(), store.bookings["bk-1"])
	require.NoError(t, err)
	assert.InDelta(t, 80, amount, 1e-9)

	risk.tiers["bk-1"] = models.RiskTierMedium
	amount, err = h.depositAmount(context.Background(), store.bookings["bk-1"])
	require.NoError(t, err)
	assert.InDelta(t, 40, amount, 1e-9)
}

func TestDepositAmountLowRiskNotRequired(t *testing.T) {
	h, store, risk := newTestHandler()
	store.bookings["bk-1"] = models.Booking{ID: "bk-1", CustomerID: "cust-1", TotalPrice: 400}
	risk.tiers["bk-1"] = models.RiskTierLow

	_, err := h.depositAmount(context.Background(), store.bookings["bk-1"])
	assert.True(t, errors.Is(err, ErrDepositNotRequired))
}

func TestCollectDepositLowRiskShortCircuits(t *testing.T) {
	h, store, risk := newTestHandler()
	store.bookings["bk-1"] = models.Booking{ID: "bk-1", CustomerID: "cust-1", TotalPrice: 400}
	risk.tiers["bk-1"] = models.RiskTierLow

	_, err := h.CollectDeposit(context.Background(), models.DepositRequest{
		BookingID: "bk-1", CustomerID: "cust-1",
	})
	assert.True(t, errors.Is(err, ErrDepositNotRequired))
	assert.False(t, store.prepaid["bk-1"])
}

func TestCollectDepositRejectsUnknownBooking(t *testing.T) {
	h, _, _ := newTestHandler()

	_, err := h.CollectDeposit(context.Background(), models.DepositRequest{
		BookingID: "bk-missing", CustomerID: "cust-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bk-missing")
}

func TestCollectDepositRejectsCustomerMismatch(t *testing.T) {
	h, store, risk := newTestHandler()
	store.bookings["bk-1"] = models.Booking{ID: "bk-1", CustomerID: "cust-1", TotalPrice: 400}
	risk.tiers["bk-1"] = models.RiskTierHigh

	_, err := h.CollectDeposit(context.Background(), models.DepositRequest{
		BookingID: "bk-1", CustomerID: "cust-2",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different customer")
}

func TestValidateDeposit(t *testing.T) {
	assert.Error(t, validateDeposit(models.DepositRequest{CustomerID: "cust-1"}))
	assert.Error(t, validateDeposit(models.DepositRequest{BookingID: "bk-1"}))
	assert.NoError(t, validateDeposit(models.DepositRequest{BookingID: "bk-1", CustomerID: "cust-1"}))
}
