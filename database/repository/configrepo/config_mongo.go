package configRepo

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

// MongoConfigRepo loads versioned configuration documents. The highest
// version wins; when no document exists the documented platform defaults
// are used.
type MongoConfigRepo struct {
	weightsColl *mongo.Collection
	pricingColl *mongo.Collection
}

// NewMongoConfigRepo constructs the repository over the default collections.
func NewMongoConfigRepo() *MongoConfigRepo {
	return &MongoConfigRepo{
		weightsColl: database.GetCollection("scoring_weights"),
		pricingColl: database.GetCollection("pricing_rules"),
	}
}

// ScoringWeights loads and validates the latest scoring configuration.
func (repo *MongoConfigRepo) ScoringWeights(ctx context.Context) (models.ScoringWeights, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var weights models.ScoringWeights
	err := repo.weightsColl.FindOne(ctxWithTimeout, bson.M{},
		options.FindOne().SetSort(bson.M{"version": -1})).Decode(&weights)
	if err == mongo.ErrNoDocuments {
		return models.DefaultScoringWeights(), nil
	}
	if err != nil {
		return models.ScoringWeights{}, fmt.Errorf("error loading scoring weights: %w", err)
	}
	if err := weights.Validate(); err != nil {
		return models.ScoringWeights{}, fmt.Errorf("invalid scoring weights config: %w", err)
	}
	return weights, nil
}

// PricingRules loads and validates the latest pricing configuration.
func (repo *MongoConfigRepo) PricingRules(ctx context.Context) (models.PricingRules, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rules models.PricingRules
	err := repo.pricingColl.FindOne(ctxWithTimeout, bson.M{},
		options.FindOne().SetSort(bson.M{"version": -1})).Decode(&rules)
	if err == mongo.ErrNoDocuments {
		return models.DefaultPricingRules(), nil
	}
	if err != nil {
		return models.PricingRules{}, fmt.Errorf("error loading pricing rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return models.PricingRules{}, fmt.Errorf("invalid pricing rules config: %w", err)
	}
	return rules, nil
}
