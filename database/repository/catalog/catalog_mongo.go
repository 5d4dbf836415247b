package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"fieldserve/database"
	"fieldserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCatalogRepo is the MongoDB-backed CatalogRepository.
type MongoCatalogRepo struct {
	serviceColl  *mongo.Collection
	siteColl     *mongo.Collection
	customerColl *mongo.Collection
}

// NewMongoCatalogRepo constructs the repository over the default collections.
func NewMongoCatalogRepo() *MongoCatalogRepo {
	return &MongoCatalogRepo{
		serviceColl:  database.GetCollection("services"),
		siteColl:     database.GetCollection("sites"),
		customerColl: database.GetCollection("customers"),
	}
}

// GetService retrieves a catalogue entry by id.
func (repo *MongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := repo.serviceColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&svc); err != nil {
		return nil, fmt.Errorf("service %s not found: %w", id, err)
	}
	return &svc, nil
}

// GetSite retrieves a site by id.
func (repo *MongoCatalogRepo) GetSite(ctx context.Context, id string) (*models.Site, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var site models.Site
	if err := repo.siteColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&site); err != nil {
		return nil, fmt.Errorf("site %s not found: %w", id, err)
	}
	return &site, nil
}

// GetCustomer retrieves a customer by id.
func (repo *MongoCatalogRepo) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	if err := repo.customerColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&customer); err != nil {
		return nil, fmt.Errorf("customer %s not found: %w", id, err)
	}
	return &customer, nil
}
