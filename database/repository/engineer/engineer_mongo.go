package engineerRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/database"
	"fieldserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEngineerRepo is the MongoDB-backed EngineerRepository.
type MongoEngineerRepo struct {
	engineerColl       *mongo.Collection
	unavailabilityColl *mongo.Collection
}

// NewMongoEngineerRepo constructs the repository over the default collections.
func NewMongoEngineerRepo() *MongoEngineerRepo {
	return &MongoEngineerRepo{
		engineerColl:       database.GetCollection("engineers"),
		unavailabilityColl: database.GetCollection("unavailability"),
	}
}

// GetByID retrieves an engineer snapshot by id.
func (repo *MongoEngineerRepo) GetByID(ctx context.Context, id string) (*models.EngineerWithProfile, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var eng models.EngineerWithProfile
	err := repo.engineerColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&eng)
	if err != nil {
		return nil, fmt.Errorf("engineer %s not found: %w", id, err)
	}
	return &eng, nil
}

// ListByCompetency returns active engineers approved for the service type.
func (repo *MongoEngineerRepo) ListByCompetency(ctx context.Context, serviceType models.ServiceType) ([]models.EngineerWithProfile, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"active":                    true,
		"competencies.service_type": string(serviceType),
	}
	cursor, err := repo.engineerColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing engineers for %s: %w", serviceType, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var engineers []models.EngineerWithProfile
	if err := cursor.All(ctxWithTimeout, &engineers); err != nil {
		return nil, fmt.Errorf("error decoding engineers: %w", err)
	}
	return engineers, nil
}

// ListUnavailability returns recorded blocks within [from, to].
func (repo *MongoEngineerRepo) ListUnavailability(ctx context.Context, engineerID, from, to string) ([]models.Unavailability, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"engineer_id": engineerID,
		"date":        bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := repo.unavailabilityColl.Find(ctxWithTimeout, filter, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, fmt.Errorf("error listing unavailability for %s: %w", engineerID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var blocks []models.Unavailability
	if err := cursor.All(ctxWithTimeout, &blocks); err != nil {
		return nil, fmt.Errorf("error decoding unavailability: %w", err)
	}
	return blocks, nil
}
