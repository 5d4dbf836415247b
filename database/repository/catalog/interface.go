package catalogRepo

import (
	"context"

	"fieldserve/models"
)

// CatalogRepository defines lookups for the service catalogue, sites and
// customers.
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetSite(ctx context.Context, id string) (*models.Site, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
}
