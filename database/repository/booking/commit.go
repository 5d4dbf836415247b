package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldserve/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotConflict is returned when another active booking already holds the
// (engineer, date, slot) triple. It is retryable: the caller should re-run
// slot generation and offer fresh candidates.
var ErrSlotConflict = errors.New("slot already booked")

// Commit inserts the booking, relying on the unique partial index over
// (engineer_id, date, slot) for active bookings to reject double-booking.
// Two simultaneous commits for the same triple race on the index, never on
// application state.
func (repo *MongoBookingRepo) Commit(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	booking.Status = models.BookingStatusConfirmed
	booking.CreatedAt = time.Now()

	_, err := repo.bookingColl.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("engineer %s on %s %s: %w", booking.EngineerID, booking.Date, booking.Slot, ErrSlotConflict)
		}
		return fmt.Errorf("error committing booking: %w", err)
	}
	return nil
}
