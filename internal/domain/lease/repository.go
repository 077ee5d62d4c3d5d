package lease

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/types"
)

// Repository is the read side of lease administration used by billing
type Repository interface {
	Get(ctx context.Context, id string) (*Lease, error)

	// ListBillable returns the org's leases whose term overlaps the window
	ListBillable(ctx context.Context, orgID string, window types.Period) ([]*Lease, error)

	// ListOrgIDs returns every org with at least one active lease
	ListOrgIDs(ctx context.Context) ([]string, error)
}

// SettingsRepository stores versioned billing settings
type SettingsRepository interface {
	// GetAsOf returns the version in effect on the given date
	GetAsOf(ctx context.Context, leaseID string, asOf time.Time) (*BillingSettings, error)

	// GetLatest returns the most recent version regardless of effective date
	GetLatest(ctx context.Context, leaseID string) (*BillingSettings, error)

	Create(ctx context.Context, settings *BillingSettings) error
}
