package postgres

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/charge"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// chargeRow adds the jsonb utility column to the domain model
type chargeRow struct {
	charge.ChargeDefinition
	UtilityJSON []byte `db:"utility"`
}

func (row *chargeRow) toDomain() (*charge.ChargeDefinition, error) {
	c := row.ChargeDefinition
	if len(row.UtilityJSON) > 0 && string(row.UtilityJSON) != "null" {
		var reading charge.UtilityReading
		if err := json.Unmarshal(row.UtilityJSON, &reading); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored utility reading is malformed").
				WithReportableDetails(map[string]any{"charge_id": c.ID}).
				Mark(ierr.ErrDatabase)
		}
		c.Utility = &reading
	}
	return &c, nil
}

type chargeRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewChargeRepository creates a new instance of charge definition repository
func NewChargeRepository(db *postgres.DB, logger *logger.Logger) charge.Repository {
	return &chargeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *chargeRepository) ListActive(ctx context.Context, leaseID string, period types.Period) ([]*charge.ChargeDefinition, error) {
	query := `
		SELECT * FROM charge_definitions
		WHERE lease_id = $1
		AND status = $2
		AND effective_from <= $3
		AND (effective_to IS NULL OR effective_to >= $4)
		ORDER BY effective_from, id`

	var rows []*chargeRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		leaseID, types.StatusPublished, period.End, period.Start); err != nil {
		return nil, postgres.WrapError(err, "charge definition", map[string]any{"lease_id": leaseID})
	}

	charges := make([]*charge.ChargeDefinition, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, nil
}

func (r *chargeRepository) Get(ctx context.Context, id string) (*charge.ChargeDefinition, error) {
	query := `
		SELECT * FROM charge_definitions
		WHERE id = $1
		AND status = $2`

	var row chargeRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "charge definition", map[string]any{"charge_id": id})
	}
	return row.toDomain()
}
