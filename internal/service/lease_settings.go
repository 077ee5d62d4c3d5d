package service

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
)

// LeaseSettingsService versions lease billing settings. Changes only apply
// to periods that have not been invoiced yet.
type LeaseSettingsService interface {
	UpdateBillingSettings(ctx context.Context, req *dto.UpdateBillingSettingsRequest) (*lease.BillingSettings, error)
	GetBillingSettings(ctx context.Context, leaseID string, asOf time.Time) (*lease.BillingSettings, error)
}

type leaseSettingsService struct {
	ServiceParams
}

func NewLeaseSettingsService(params ServiceParams) LeaseSettingsService {
	return &leaseSettingsService{
		ServiceParams: params,
	}
}

func (s *leaseSettingsService) UpdateBillingSettings(ctx context.Context, req *dto.UpdateBillingSettingsRequest) (*lease.BillingSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.LeaseRepo.Get(ctx, req.LeaseID); err != nil {
		return nil, err
	}

	effectiveFrom := types.TruncateToDay(req.EffectiveFrom)
	latest, err := s.InvoiceRepo.GetLatestPeriodEnd(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if latest != nil && !effectiveFrom.After(types.TruncateToDay(*latest)) {
		return nil, ierr.NewError("billing settings cannot change invoiced periods").
			WithHintf("Settings must take effect after %s", latest.Format(time.DateOnly)).
			WithReportableDetails(map[string]any{
				"lease_id":          req.LeaseID,
				"effective_from":    effectiveFrom,
				"latest_period_end": *latest,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	settings := req.ToBillingSettings(ctx, s.Clock.UtcNow())
	if err := s.SettingsRepo.Create(ctx, settings); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated billing settings",
		"lease_id", settings.LeaseID,
		"settings_id", settings.ID,
		"effective_from", settings.EffectiveFrom,
		"billing_day", settings.BillingDay,
		"rent_timing", settings.RentTiming,
	)
	return settings, nil
}

func (s *leaseSettingsService) GetBillingSettings(ctx context.Context, leaseID string, asOf time.Time) (*lease.BillingSettings, error) {
	return s.SettingsRepo.GetAsOf(ctx, leaseID, types.TruncateToDay(asOf))
}
