package engineerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the query indexes the repository depends on.
func (repo *MongoEngineerRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.engineerColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "competencies.service_type", Value: 1}, {Key: "active", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating engineer indexes: %w", err)
	}

	_, err = repo.unavailabilityColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "engineer_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("error creating unavailability index: %w", err)
	}
	return nil
}
