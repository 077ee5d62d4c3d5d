package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// InMemoryLeaseStore implements lease.Repository
type InMemoryLeaseStore struct {
	*InMemoryStore[*lease.Lease]
}

func NewInMemoryLeaseStore() *InMemoryLeaseStore {
	return &InMemoryLeaseStore{
		InMemoryStore: NewInMemoryStore(copyLease),
	}
}

func copyLease(l *lease.Lease) *lease.Lease {
	if l == nil {
		return nil
	}
	c := *l
	if l.EndDate != nil {
		end := *l.EndDate
		c.EndDate = &end
	}
	return &c
}

func (s *InMemoryLeaseStore) Get(ctx context.Context, id string) (*lease.Lease, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryLeaseStore) ListBillable(ctx context.Context, orgID string, window types.Period) ([]*lease.Lease, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, l *lease.Lease) bool {
		if l.OrgID != orgID {
			return false
		}
		_, ok := l.Term(window)
		return ok
	}, func(i, j *lease.Lease) bool {
		return i.ID < j.ID
	})
}

func (s *InMemoryLeaseStore) ListOrgIDs(ctx context.Context) ([]string, error) {
	leases, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, l *lease.Lease) bool {
		return l.LeaseStatus == types.LeaseStatusActive
	}, nil)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Map(leases, func(l *lease.Lease, _ int) string { return l.OrgID }))
	sort.Strings(ids)
	return ids, nil
}

// InMemorySettingsStore implements lease.SettingsRepository
type InMemorySettingsStore struct {
	*InMemoryStore[*lease.BillingSettings]
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		InMemoryStore: NewInMemoryStore(func(s *lease.BillingSettings) *lease.BillingSettings {
			c := *s
			return &c
		}),
	}
}

func (s *InMemorySettingsStore) Create(ctx context.Context, settings *lease.BillingSettings) error {
	return s.InMemoryStore.CreateUnique(ctx, settings.ID, settings, func(existing *lease.BillingSettings) bool {
		return existing.LeaseID == settings.LeaseID && existing.EffectiveFrom.Equal(settings.EffectiveFrom)
	})
}

func (s *InMemorySettingsStore) GetAsOf(ctx context.Context, leaseID string, asOf time.Time) (*lease.BillingSettings, error) {
	versions, err := s.versions(ctx, leaseID, func(v *lease.BillingSettings) bool {
		return !v.EffectiveFrom.After(asOf)
	})
	if err != nil {
		return nil, err
	}
	return versions[0], nil
}

func (s *InMemorySettingsStore) GetLatest(ctx context.Context, leaseID string) (*lease.BillingSettings, error) {
	versions, err := s.versions(ctx, leaseID, nil)
	if err != nil {
		return nil, err
	}
	return versions[0], nil
}

// versions returns matching settings newest first
func (s *InMemorySettingsStore) versions(ctx context.Context, leaseID string, keep func(*lease.BillingSettings) bool) ([]*lease.BillingSettings, error) {
	versions, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, v *lease.BillingSettings) bool {
		return v.LeaseID == leaseID && (keep == nil || keep(v))
	}, func(i, j *lease.BillingSettings) bool {
		return i.EffectiveFrom.After(j.EffectiveFrom)
	})
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ierr.NewError("billing settings not found").
			WithHintf("Lease %s has no billing settings in effect", leaseID).
			Mark(ierr.ErrNotFound)
	}
	return versions, nil
}
