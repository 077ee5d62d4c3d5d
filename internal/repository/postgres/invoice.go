package postgres

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates a new instance of invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

const insertInvoiceQuery = `
	INSERT INTO invoices (
		id, org_id, lease_id, period_key, run_type, period_start, period_end,
		sub_total, tax_rate, tax_amount, total_amount, paid_amount, balance_amount,
		credited_amount, invoice_status, invoice_number, idempotency_key, due_days,
		due_date, issued_at, paid_at, voided_at, cancelled_at, version,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :org_id, :lease_id, :period_key, :run_type, :period_start, :period_end,
		:sub_total, :tax_rate, :tax_amount, :total_amount, :paid_amount, :balance_amount,
		:credited_amount, :invoice_status, :invoice_number, :idempotency_key, :due_days,
		:due_date, :issued_at, :paid_at, :voided_at, :cancelled_at, :version,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)`

const insertInvoiceLineQuery = `
	INSERT INTO invoice_lines (
		id, invoice_id, charge_id, charge_type, description, quantity, unit_amount,
		amount, taxable, period_start, period_end, prorated, proration_method
	) VALUES (
		:id, :invoice_id, :charge_id, :charge_type, :description, :quantity, :unit_amount,
		:amount, :taxable, :period_start, :period_end, :prorated, :proration_method
	)`

// Create writes the header and lines in one transaction. The unique index on
// idempotency_key turns a concurrent duplicate into ErrAlreadyExists.
func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"lease_id", inv.LeaseID,
		"period_key", inv.PeriodKey,
		"line_count", len(inv.Lines),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		if _, err := q.NamedExecContext(ctx, insertInvoiceQuery, inv); err != nil {
			return postgres.WrapError(err, "invoice", map[string]any{
				"invoice_id":      inv.ID,
				"idempotency_key": lo.FromPtr(inv.IdempotencyKey),
			})
		}
		return r.insertLines(ctx, q, inv.ID, inv.Lines)
	})
}

func (r *invoiceRepository) insertLines(ctx context.Context, q postgres.Querier, invoiceID string, lines []*invoice.InvoiceLine) error {
	for _, line := range lines {
		line.InvoiceID = invoiceID
		if _, err := q.NamedExecContext(ctx, insertInvoiceLineQuery, line); err != nil {
			return postgres.WrapError(err, "invoice line", map[string]any{
				"invoice_id": invoiceID,
				"line_id":    line.ID,
			})
		}
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE id = $1
		AND status = $2`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "invoice", map[string]any{"invoice_id": id})
	}
	if err := r.attachLines(ctx, []*invoice.Invoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE idempotency_key = $1
		AND status = $2`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, key, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "invoice", map[string]any{"idempotency_key": key})
	}
	if err := r.attachLines(ctx, []*invoice.Invoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

// attachLines loads the lines of all given invoices with a single query
func (r *invoiceRepository) attachLines(ctx context.Context, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	query := `
		SELECT * FROM invoice_lines
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, period_start, id`

	ids := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string { return inv.ID })
	var lines []*invoice.InvoiceLine
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &lines, query, pq.Array(ids)); err != nil {
		return postgres.WrapError(err, "invoice line", map[string]any{"invoice_ids": ids})
	}

	byInvoice := lo.GroupBy(lines, func(l *invoice.InvoiceLine) string { return l.InvoiceID })
	for _, inv := range invoices {
		inv.Lines = byInvoice[inv.ID]
		if inv.Lines == nil {
			inv.Lines = []*invoice.InvoiceLine{}
		}
	}
	return nil
}

// Update is a compare-and-set on version. Lines are not touched.
func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			sub_total = :sub_total,
			tax_rate = :tax_rate,
			tax_amount = :tax_amount,
			total_amount = :total_amount,
			paid_amount = :paid_amount,
			balance_amount = :balance_amount,
			credited_amount = :credited_amount,
			invoice_status = :invoice_status,
			invoice_number = :invoice_number,
			due_days = :due_days,
			due_date = :due_date,
			issued_at = :issued_at,
			paid_at = :paid_at,
			voided_at = :voided_at,
			cancelled_at = :cancelled_at,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by,
			version = version + 1
		WHERE id = :id
		AND version = :version`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
		"version", inv.Version,
	)

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return postgres.WrapError(err, "invoice", map[string]any{"invoice_id": inv.ID})
	}
	if err := checkVersionedUpdate(result, "invoice", inv.ID, inv.Version); err != nil {
		return err
	}
	inv.Version++
	return nil
}

func (r *invoiceRepository) ReplaceLines(ctx context.Context, invoiceID string, lines []*invoice.InvoiceLine) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		if _, err := q.ExecContext(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID); err != nil {
			return postgres.WrapError(err, "invoice line", map[string]any{"invoice_id": invoiceID})
		}
		return r.insertLines(ctx, q, invoiceID, lines)
	})
}

func invoiceWhere(f *types.InvoiceFilter) *where {
	w := newWhere().add("status = ?", types.StatusPublished)
	if f == nil {
		return w
	}
	if f.OrgID != "" {
		w.add("org_id = ?", f.OrgID)
	}
	if f.LeaseID != "" {
		w.add("lease_id = ?", f.LeaseID)
	}
	if f.PeriodKey != "" {
		w.add("period_key = ?", f.PeriodKey)
	}
	if f.RunType != "" {
		w.add("run_type = ?", f.RunType)
	}
	if f.DueBefore != nil {
		w.add("due_date < ?", *f.DueBefore)
	}
	if f.IdempotencyKey != "" {
		w.add("idempotency_key = ?", f.IdempotencyKey)
	}
	return w.in("invoice_status", stringsOf(f.InvoiceStatus))
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	w := invoiceWhere(filter)
	query := `SELECT * FROM invoices` + w.sql() + page(qf, "created_at")

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, w.args...); err != nil {
		return nil, postgres.WrapError(err, "invoice", nil)
	}
	if err := r.attachLines(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	w := invoiceWhere(filter)
	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...); err != nil {
		return 0, postgres.WrapError(err, "invoice", nil)
	}
	return count, nil
}

func (r *invoiceRepository) ListPastDue(ctx context.Context, orgID string, asOf time.Time) ([]*invoice.Invoice, error) {
	filter := &types.InvoiceFilter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		OrgID:         orgID,
		InvoiceStatus: []types.InvoiceStatus{types.InvoiceStatusIssued, types.InvoiceStatusPartiallyPaid},
		DueBefore:     lo.ToPtr(types.TruncateToDay(asOf)),
	}
	return r.List(ctx, filter)
}

func (r *invoiceRepository) GetLatestPeriodEnd(ctx context.Context, leaseID string) (*time.Time, error) {
	query := `
		SELECT MAX(period_end) FROM invoices
		WHERE lease_id = $1
		AND status = $2
		AND invoice_status NOT IN ($3, $4)`

	var latest pq.NullTime
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &latest, query, leaseID, types.StatusPublished,
		types.InvoiceStatusVoided, types.InvoiceStatusCancelled); err != nil {
		return nil, postgres.WrapError(err, "invoice", map[string]any{"lease_id": leaseID})
	}
	if !latest.Valid {
		return nil, nil
	}
	return lo.ToPtr(latest.Time.UTC()), nil
}

type invoiceSequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceSequenceRepository creates a new instance of invoice sequence repository
func NewInvoiceSequenceRepository(db *postgres.DB, logger *logger.Logger) invoice.SequenceRepository {
	return &invoiceSequenceRepository{
		db:     db,
		logger: logger,
	}
}

// NextValue relies on the row lock taken by ON CONFLICT DO UPDATE, so
// concurrent issuers always get distinct values
func (r *invoiceSequenceRepository) NextValue(ctx context.Context, orgID, yearMonth string) (int64, error) {
	query := `
		INSERT INTO invoice_sequences (id, org_id, year_month, last_value, created_at, updated_at)
		VALUES ($1, $2, $3, 1, NOW(), NOW())
		ON CONFLICT (org_id, year_month) DO UPDATE
		SET last_value = invoice_sequences.last_value + 1,
			updated_at = NOW()
		RETURNING last_value`

	var next int64
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &next, query,
		types.GenerateUUID(), orgID, yearMonth); err != nil {
		return 0, postgres.WrapError(err, "invoice sequence", map[string]any{
			"org_id":     orgID,
			"year_month": yearMonth,
		})
	}

	r.logger.Debugw("allocated invoice sequence",
		"org_id", orgID,
		"year_month", yearMonth,
		"value", next,
	)
	return next, nil
}

// checkVersionedUpdate maps a zero-row optimistic update to ErrVersionConflict
func checkVersionedUpdate(result interface{ RowsAffected() (int64, error) }, entity, id string, version int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return postgres.WrapError(err, entity, map[string]any{"id": id})
	}
	if rows == 0 {
		return ierr.NewErrorf("%s %s was modified concurrently", entity, id).
			WithHintf("The %s was changed by another request, please retry", entity).
			WithReportableDetails(map[string]any{
				"id":      id,
				"version": version,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
