package allocation

import (
	"context"
	"fmt"
	"time"

	bookingRepo "fieldserve/database/repository/booking"
	catalogRepo "fieldserve/database/repository/catalog"
	configRepo "fieldserve/database/repository/configrepo"
	engineerRepo "fieldserve/database/repository/engineer"
	"fieldserve/models"
	"fieldserve/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxSlots = 20

// NewDefaultAllocationService wires the core over its repository
// collaborators.
func NewDefaultAllocationService(
	engineers engineerRepo.EngineerRepository,
	bookings bookingRepo.BookingRepository,
	catalog catalogRepo.CatalogRepository,
	configSrc configRepo.ConfigRepository,
	logger *zap.Logger,
) *DefaultAllocationService {
	return &DefaultAllocationService{
		Engineers:        engineers,
		Bookings:         bookings,
		Catalog:          catalog,
		ConfigSrc:        configSrc,
		Logger:           logger,
		MaxSlots:         defaultMaxSlots,
		SearchWindowDays: 14,
	}
}

func (s *DefaultAllocationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultAllocationService) maxSlots() int {
	if s.MaxSlots > 0 {
		return s.MaxSlots
	}
	return defaultMaxSlots
}

func (s *DefaultAllocationService) searchWindowDays() int {
	if s.SearchWindowDays > 0 {
		return s.SearchWindowDays
	}
	return 14
}

// CommitSlot prices the chosen slot and writes the booking through the
// repository's atomic check-and-write. A lost race surfaces as
// repository.ErrSlotConflict, retryable by the caller with fresh
// candidates.
func (s *DefaultAllocationService) CommitSlot(ctx context.Context, req models.BookingRequest, slot models.ScheduleSlot, price float64) (*models.Booking, error) {
	if price <= 0 {
		quote, err := s.CalculatePrice(ctx, req, slot)
		if err != nil {
			return nil, err
		}
		price = quote.FinalPrice
	}

	booking := &models.Booking{
		ID:           uuid.New().String(),
		EngineerID:   slot.EngineerID,
		CustomerID:   req.CustomerID,
		SiteID:       req.SiteID,
		ServiceID:    req.ServiceID,
		Date:         slot.Date,
		Slot:         slot.Slot,
		TotalPrice:   price,
		EstimatedQty: req.EstimatedQty,
	}
	if err := s.Bookings.Commit(ctx, booking); err != nil {
		return nil, err
	}

	s.logger().Info("slot committed",
		zap.String("bookingId", booking.ID),
		zap.String("engineerId", booking.EngineerID),
		zap.String("date", booking.Date),
		zap.String("slot", booking.Slot))
	return booking, nil
}

// SummarizeUpcomingRisk evaluates cancellation risk for every confirmed
// booking in the next withinDays days. Per-item failures are isolated and
// counted; one bad booking never aborts the batch.
func (s *DefaultAllocationService) SummarizeUpcomingRisk(ctx context.Context, withinDays int) (summaries []models.RiskSummary, failed int, err error) {
	bookings, err := s.Bookings.ListUpcoming(ctx, withinDays)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list upcoming bookings: %w", err)
	}
	stats, err := s.Bookings.CancellationStats(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load cancellation stats: %w", err)
	}

	now := time.Now()
	for _, b := range bookings {
		summary, itemErr := s.summarizeBookingRisk(ctx, b, *stats, now)
		if itemErr != nil {
			failed++
			s.logger().Warn("risk summary failed for booking",
				zap.String("bookingId", b.ID), zap.Error(itemErr))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, failed, nil
}

// AssessBookingRisk summarizes the current cancellation risk of one
// committed booking, prepaid reduction included. Deposit sizing keys off
// the returned tier.
func (s *DefaultAllocationService) AssessBookingRisk(ctx context.Context, bookingID string) (*models.RiskSummary, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NewDataMissingError(fmt.Sprintf("booking %s: %v", bookingID, err))
	}
	stats, err := s.Bookings.CancellationStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation stats: %w", err)
	}

	summary, err := s.summarizeBookingRisk(ctx, *booking, *stats, time.Now())
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *DefaultAllocationService) summarizeBookingRisk(ctx context.Context, b models.Booking, stats models.CancellationStats, now time.Time) (models.RiskSummary, error) {
	customer := models.Customer{ID: b.CustomerID}
	if c, err := s.Catalog.GetCustomer(ctx, b.CustomerID); err == nil {
		customer = *c
	}
	site := models.SiteStats{SiteID: b.SiteID}
	if st, err := s.Bookings.SiteStats(ctx, b.SiteID); err == nil {
		site = *st
	}

	req := models.BookingRequest{
		CustomerID: b.CustomerID,
		SiteID:     b.SiteID,
		ServiceID:  b.ServiceID,
	}
	slot := models.ScheduleSlot{Date: b.Date, Slot: b.Slot, EngineerID: b.EngineerID}

	risk := PredictCancellationRisk(req, slot, RiskInputs{
		Stats:    stats,
		Customer: customer,
		Site:     site,
		Now:      now,
	})
	if b.Prepaid {
		risk = ApplyPrepaidAdjustment(risk)
	}
	return models.RiskSummary{
		BookingID:   b.ID,
		Probability: risk.Probability,
		Tier:        risk.Tier,
	}, nil
}
