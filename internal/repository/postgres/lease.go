package postgres

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
)

type leaseRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewLeaseRepository creates a new instance of lease repository
func NewLeaseRepository(db *postgres.DB, logger *logger.Logger) lease.Repository {
	return &leaseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *leaseRepository) Get(ctx context.Context, id string) (*lease.Lease, error) {
	query := `
		SELECT * FROM leases
		WHERE id = $1
		AND status = $2`

	var l lease.Lease
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &l, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "lease", map[string]any{"lease_id": id})
	}
	return &l, nil
}

// ListBillable includes terminated leases so their final partial period is billed
func (r *leaseRepository) ListBillable(ctx context.Context, orgID string, window types.Period) ([]*lease.Lease, error) {
	query := `
		SELECT * FROM leases
		WHERE org_id = $1
		AND status = $2
		AND start_date <= $3
		AND (end_date IS NULL OR end_date >= $4)
		ORDER BY start_date, id`

	r.logger.Debugw("listing billable leases",
		"org_id", orgID,
		"window", window.String(),
	)

	var leases []*lease.Lease
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &leases, query,
		orgID, types.StatusPublished, window.End, window.Start); err != nil {
		return nil, postgres.WrapError(err, "lease", map[string]any{"org_id": orgID})
	}
	return leases, nil
}

func (r *leaseRepository) ListOrgIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT org_id FROM leases
		WHERE lease_status = $1
		AND status = $2
		ORDER BY org_id`

	var orgIDs []string
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &orgIDs, query,
		types.LeaseStatusActive, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "lease", nil)
	}
	return orgIDs, nil
}

type billingSettingsRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewBillingSettingsRepository creates a new instance of billing settings repository
func NewBillingSettingsRepository(db *postgres.DB, logger *logger.Logger) lease.SettingsRepository {
	return &billingSettingsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *billingSettingsRepository) GetAsOf(ctx context.Context, leaseID string, asOf time.Time) (*lease.BillingSettings, error) {
	query := `
		SELECT * FROM lease_billing_settings
		WHERE lease_id = $1
		AND effective_from <= $2
		AND status = $3
		ORDER BY effective_from DESC
		LIMIT 1`

	var s lease.BillingSettings
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query,
		leaseID, types.TruncateToDay(asOf), types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "billing settings", map[string]any{
			"lease_id": leaseID,
			"as_of":    asOf,
		})
	}
	return &s, nil
}

func (r *billingSettingsRepository) GetLatest(ctx context.Context, leaseID string) (*lease.BillingSettings, error) {
	query := `
		SELECT * FROM lease_billing_settings
		WHERE lease_id = $1
		AND status = $2
		ORDER BY effective_from DESC
		LIMIT 1`

	var s lease.BillingSettings
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, leaseID, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "billing settings", map[string]any{"lease_id": leaseID})
	}
	return &s, nil
}

func (r *billingSettingsRepository) Create(ctx context.Context, s *lease.BillingSettings) error {
	query := `
		INSERT INTO lease_billing_settings (
			id, lease_id, billing_day, rent_timing, proration_method,
			tax_applicable, tax_rate, due_days, effective_from,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :lease_id, :billing_day, :rent_timing, :proration_method,
			:tax_applicable, :tax_rate, :due_days, :effective_from,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating billing settings",
		"lease_id", s.LeaseID,
		"effective_from", s.EffectiveFrom,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s); err != nil {
		return postgres.WrapError(err, "billing settings", map[string]any{
			"lease_id":       s.LeaseID,
			"effective_from": s.EffectiveFrom,
		})
	}
	return nil
}
