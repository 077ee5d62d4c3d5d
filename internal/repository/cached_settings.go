package repository

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/domain/lease"
)

const settingsCacheTTL = 10 * time.Minute

// cachedSettingsRepository memoises as-of lookups. Invoice runs resolve the
// same (lease, date) pair for every run type, and settings rows are append only.
type cachedSettingsRepository struct {
	lease.SettingsRepository
	cache cache.Cache
}

// NewCachedSettingsRepository wraps a settings repository with a read-through cache
func NewCachedSettingsRepository(inner lease.SettingsRepository, c cache.Cache) lease.SettingsRepository {
	return &cachedSettingsRepository{SettingsRepository: inner, cache: c}
}

func (r *cachedSettingsRepository) GetAsOf(ctx context.Context, leaseID string, asOf time.Time) (*lease.BillingSettings, error) {
	key := cache.GenerateKey(cache.PrefixBillingSettings, leaseID, asOf.UTC().Format(time.DateOnly))
	if v, ok := r.cache.Get(ctx, key); ok {
		if s, ok := v.(*lease.BillingSettings); ok {
			return s, nil
		}
	}

	s, err := r.SettingsRepository.GetAsOf(ctx, leaseID, asOf)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, s, settingsCacheTTL)
	return s, nil
}

// Create invalidates every cached date of the lease
func (r *cachedSettingsRepository) Create(ctx context.Context, s *lease.BillingSettings) error {
	if err := r.SettingsRepository.Create(ctx, s); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.GenerateKey(cache.PrefixBillingSettings, s.LeaseID)+":")
	return nil
}
