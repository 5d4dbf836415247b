package configRepo

import (
	"context"

	"fieldserve/models"
)

// ConfigRepository loads the admin-editable, versioned scoring and pricing
// configurations. Implementations must validate what they return:
// configuration problems fail at load, never per request.
type ConfigRepository interface {
	ScoringWeights(ctx context.Context) (models.ScoringWeights, error)
	PricingRules(ctx context.Context) (models.PricingRules, error)
}
