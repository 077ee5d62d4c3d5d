package testutil

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/types"
)

// InMemoryChargeStore implements charge.Repository
type InMemoryChargeStore struct {
	*InMemoryStore[*charge.ChargeDefinition]
}

func NewInMemoryChargeStore() *InMemoryChargeStore {
	return &InMemoryChargeStore{
		InMemoryStore: NewInMemoryStore(copyCharge),
	}
}

func copyCharge(c *charge.ChargeDefinition) *charge.ChargeDefinition {
	cp := *c
	if c.EffectiveTo != nil {
		to := *c.EffectiveTo
		cp.EffectiveTo = &to
	}
	if c.Utility != nil {
		u := *c.Utility
		cp.Utility = &u
	}
	return &cp
}

func (s *InMemoryChargeStore) Get(ctx context.Context, id string) (*charge.ChargeDefinition, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryChargeStore) ListActive(ctx context.Context, leaseID string, period types.Period) ([]*charge.ChargeDefinition, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, c *charge.ChargeDefinition) bool {
		if c.LeaseID != leaseID || c.Status != types.StatusPublished {
			return false
		}
		_, ok := c.Range(period)
		return ok
	}, func(i, j *charge.ChargeDefinition) bool {
		if !i.EffectiveFrom.Equal(j.EffectiveFrom) {
			return i.EffectiveFrom.Before(j.EffectiveFrom)
		}
		return i.ID < j.ID
	})
}
