package bookingRepo

import (
	"context"

	"fieldserve/models"
)

// BookingRepository defines data access for booking records and the
// historical aggregates the allocation core consumes.
type BookingRepository interface {
	// WeekStats returns one engineer's confirmed load for the inclusive
	// [weekStart, weekEnd] date range.
	WeekStats(ctx context.Context, engineerID, weekStart, weekEnd string) (*models.EngineerWeekStats, error)
	// CohortAverage returns the mean weekly job count across all engineers
	// with confirmed bookings in the range. Zero when no engineer is active.
	CohortAverage(ctx context.Context, weekStart, weekEnd string) (float64, error)
	// CountOnDay returns the engineer's confirmed jobs on the given date.
	CountOnDay(ctx context.Context, engineerID, date string) (int, error)
	// HasConflict reports whether an active booking already holds the
	// (engineer, date, slot) triple.
	HasConflict(ctx context.Context, engineerID, date, slot string) (bool, error)
	// CountNearby returns confirmed bookings on the date within radiusKm of
	// the location, for cluster detection.
	CountNearby(ctx context.Context, date string, location models.GeoPoint, radiusKm float64) (int, error)
	// JobsForDay returns the engineer's confirmed stops for the date with
	// site coordinates attached.
	JobsForDay(ctx context.Context, engineerID, date string) ([]models.RouteJob, error)

	// CancellationStats returns the rolling 90-day aggregate snapshot.
	CancellationStats(ctx context.Context) (*models.CancellationStats, error)
	// SiteStats returns the booking history for one site.
	SiteStats(ctx context.Context, siteID string) (*models.SiteStats, error)

	// Commit atomically claims the booking's (engineer, date, slot) triple.
	// Returns ErrSlotConflict when another active booking holds it.
	Commit(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a committed booking record.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListUpcoming returns confirmed bookings dated within the next n days.
	ListUpcoming(ctx context.Context, withinDays int) ([]models.Booking, error)
	// MarkPrepaid flags a booking as paid up front.
	MarkPrepaid(ctx context.Context, bookingID string) error
}
