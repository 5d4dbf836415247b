package allocation

import (
	"context"
	"time"

	bookingRepo "fieldserve/database/repository/booking"
	catalogRepo "fieldserve/database/repository/catalog"
	configRepo "fieldserve/database/repository/configrepo"
	engineerRepo "fieldserve/database/repository/engineer"
	"fieldserve/models"

	"go.uber.org/zap"
)

// AllocationService is the allocation-and-pricing core: candidate
// generation, scoring, pricing, risk, workload, routing and presentation.
// All methods are request-scoped and stateless between invocations.
type AllocationService interface {
	GetViableSlots(ctx context.Context, req models.BookingRequest, maxSlots int) ([]models.ScheduleSlot, error)
	ScoreSlotAllocation(ctx context.Context, slot models.ScheduleSlot, req models.BookingRequest, engineer models.EngineerWithProfile, weights models.ScoringWeights) (*models.AllocationScore, error)
	CalculatePrice(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot) (*models.PriceQuote, error)
	PredictCancellationRisk(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot) (*models.CancellationRisk, error)
	CalculateWorkloadBalance(ctx context.Context, engineerID string, date time.Time) (*models.WorkloadBalance, error)
	BuildOptimizedRoute(ctx context.Context, engineerID, date string) (*models.OptimizedRoute, error)
	PresentSlotsToCustomer(ctx context.Context, req models.BookingRequest, opts PresentOptions) (*models.SlotPresentation, error)
	CommitSlot(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot, price float64) (*models.Booking, error)
	SummarizeUpcomingRisk(ctx context.Context, withinDays int) ([]models.RiskSummary, int, error)
	AssessBookingRisk(ctx context.Context, bookingID string) (*models.RiskSummary, error)
}

// DefaultAllocationService implements AllocationService over the repository
// collaborators.
type DefaultAllocationService struct {
	Engineers engineerRepo.EngineerRepository
	Bookings  bookingRepo.BookingRepository
	Catalog   catalogRepo.CatalogRepository
	ConfigSrc configRepo.ConfigRepository
	Logger    *zap.Logger

	// MaxSlots caps candidate generation per request (default 20).
	MaxSlots int
	// SearchWindowDays bounds how far ahead candidates are generated.
	SearchWindowDays int
}
