package postgres

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
)

// invoiceRunRow adds the jsonb outcomes column to the domain model.
// The column is carried as text; pq would encode []byte as bytea.
type invoiceRunRow struct {
	invoicerun.InvoiceRun
	OutcomesJSON string `db:"outcomes"`
}

func newInvoiceRunRow(run *invoicerun.InvoiceRun) (*invoiceRunRow, error) {
	outcomes := run.Outcomes
	if outcomes == nil {
		outcomes = []invoicerun.LeaseOutcome{}
	}
	data, err := json.Marshal(outcomes)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode run outcomes").
			Mark(ierr.ErrSystem)
	}
	return &invoiceRunRow{InvoiceRun: *run, OutcomesJSON: string(data)}, nil
}

func (row *invoiceRunRow) toDomain() (*invoicerun.InvoiceRun, error) {
	run := row.InvoiceRun
	run.Outcomes = []invoicerun.LeaseOutcome{}
	if len(row.OutcomesJSON) > 0 {
		if err := json.UnmarshalFromString(row.OutcomesJSON, &run.Outcomes); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored run outcomes are malformed").
				WithReportableDetails(map[string]any{"run_id": run.ID}).
				Mark(ierr.ErrDatabase)
		}
	}
	return &run, nil
}

type invoiceRunRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRunRepository creates a new instance of invoice run repository
func NewInvoiceRunRepository(db *postgres.DB, logger *logger.Logger) invoicerun.Repository {
	return &invoiceRunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRunRepository) Begin(ctx context.Context, run *invoicerun.InvoiceRun) (*invoicerun.InvoiceRun, error) {
	query := `
		INSERT INTO invoice_runs (
			id, org_id, period_key, run_type, run_status, started_at, completed_at,
			outcomes, attempts, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, NULL, '[]', 1, $7, $8, $9, $10, $11
		)
		ON CONFLICT (org_id, period_key, run_type) DO UPDATE SET
			run_status = EXCLUDED.run_status,
			started_at = EXCLUDED.started_at,
			completed_at = NULL,
			attempts = invoice_runs.attempts + 1,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING *`

	var row invoiceRunRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query,
		run.ID, run.OrgID, run.PeriodKey, run.RunType, types.InvoiceRunStatusRunning, run.StartedAt,
		run.Status, run.CreatedAt, run.UpdatedAt, run.CreatedBy, run.UpdatedBy,
	)
	if err != nil {
		return nil, postgres.WrapError(err, "invoice run", map[string]any{
			"org_id":     run.OrgID,
			"period_key": run.PeriodKey,
			"run_type":   run.RunType,
		})
	}

	claimed, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	r.logger.Infow("invoice run started",
		"run_id", claimed.ID,
		"org_id", claimed.OrgID,
		"period_key", claimed.PeriodKey,
		"run_type", claimed.RunType,
		"attempts", claimed.Attempts,
	)
	return claimed, nil
}

func (r *invoiceRunRepository) Complete(ctx context.Context, run *invoicerun.InvoiceRun) error {
	query := `
		UPDATE invoice_runs SET
			run_status = :run_status,
			completed_at = :completed_at,
			outcomes = :outcomes,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	row, err := newInvoiceRunRow(run)
	if err != nil {
		return err
	}
	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, row)
	if err != nil {
		return postgres.WrapError(err, "invoice run", map[string]any{"run_id": run.ID})
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("invoice run %s not found", run.ID).
			WithHint("Invoice run not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRunRepository) Get(ctx context.Context, id string) (*invoicerun.InvoiceRun, error) {
	query := `SELECT * FROM invoice_runs WHERE id = $1 AND status = $2`

	var row invoiceRunRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "invoice run", map[string]any{"run_id": id})
	}
	return row.toDomain()
}

func (r *invoiceRunRepository) GetByKey(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) (*invoicerun.InvoiceRun, error) {
	query := `
		SELECT * FROM invoice_runs
		WHERE org_id = $1
		AND period_key = $2
		AND run_type = $3
		AND status = $4`

	var row invoiceRunRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, orgID, periodKey, runType, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "invoice run", map[string]any{
			"org_id":     orgID,
			"period_key": periodKey,
			"run_type":   runType,
		})
	}
	return row.toDomain()
}
