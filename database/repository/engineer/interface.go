package engineerRepo

import (
	"context"

	"fieldserve/models"
)

// EngineerRepository defines data access for engineer profiles and diaries.
type EngineerRepository interface {
	GetByID(ctx context.Context, id string) (*models.EngineerWithProfile, error)
	// ListByCompetency returns active engineers holding a competency for the
	// given service type.
	ListByCompetency(ctx context.Context, serviceType models.ServiceType) ([]models.EngineerWithProfile, error)
	// ListUnavailability returns recorded unavailability for the engineer in
	// the inclusive [from, to] date range.
	ListUnavailability(ctx context.Context, engineerID, from, to string) ([]models.Unavailability, error)
}
