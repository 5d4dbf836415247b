package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/database"
	"fieldserve/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo is the MongoDB-backed BookingRepository. Rolling
// aggregates are cached in Redis so risk evaluation never rescans the
// booking history per factor.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	siteColl    *mongo.Collection
	statsCache  *redis.Client
}

// NewMongoBookingRepo constructs the repository over the default collections.
func NewMongoBookingRepo(statsCache *redis.Client) *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl: database.GetCollection("bookings"),
		siteColl:    database.GetCollection("sites"),
		statsCache:  statsCache,
	}
}

// GetByID retrieves a booking record by id.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("booking %s not found: %w", id, err)
	}
	return &booking, nil
}

// ListUpcoming returns confirmed bookings dated within the next n days.
func (repo *MongoBookingRepo) ListUpcoming(ctx context.Context, withinDays int) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"status": models.BookingStatusConfirmed,
		"date": bson.M{
			"$gte": now.Format(models.DateLayout),
			"$lte": now.AddDate(0, 0, withinDays).Format(models.DateLayout),
		},
	}
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding upcoming bookings: %w", err)
	}
	return bookings, nil
}

// MarkPrepaid flags a booking as paid up front.
func (repo *MongoBookingRepo) MarkPrepaid(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout,
		bson.M{"id": bookingID},
		bson.M{"$set": bson.M{"prepaid": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking booking %s prepaid: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}
