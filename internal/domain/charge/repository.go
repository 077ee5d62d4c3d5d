package charge

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
)

// Repository reads charge definitions
type Repository interface {
	// ListActive returns the lease's definitions whose effective range overlaps the period
	ListActive(ctx context.Context, leaseID string, period types.Period) ([]*ChargeDefinition, error)

	Get(ctx context.Context, id string) (*ChargeDefinition, error)
}
