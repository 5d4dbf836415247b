package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repository depends on. The unique
// partial index over (engineer_id, date, slot) for confirmed bookings is the
// double-booking guard: Commit relies on it.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.bookingColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "engineer_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.BookingStatusConfirmed}),
		},
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "site_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating booking indexes: %w", err)
	}

	_, err = repo.siteColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("error creating site geo index: %w", err)
	}
	return nil
}
