package postgres

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/payment"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPaymentRepository creates a new instance of payment repository
func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, org_id, invoice_id, lease_id, amount, payment_mode, payment_status,
			reference, gateway_name, gateway_transaction_id, bbps_reference,
			utility_statement_id, deposit_transaction_id, confirmation_request_id,
			refund_of_payment_id, received_at, version,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :invoice_id, :lease_id, :amount, :payment_mode, :payment_status,
			:reference, :gateway_name, :gateway_transaction_id, :bbps_reference,
			:utility_statement_id, :deposit_transaction_id, :confirmation_request_id,
			:refund_of_payment_id, :received_at, :version,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
		"payment_mode", p.PaymentMode,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return postgres.WrapError(err, "payment", map[string]any{
			"payment_id": p.ID,
			"invoice_id": p.InvoiceID,
		})
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT * FROM payments WHERE id = $1 AND status = $2`

	var p payment.Payment
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "payment", map[string]any{"payment_id": id})
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			payment_status = :payment_status,
			reference = :reference,
			gateway_name = :gateway_name,
			gateway_transaction_id = :gateway_transaction_id,
			bbps_reference = :bbps_reference,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by,
			version = version + 1
		WHERE id = :id
		AND version = :version`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return postgres.WrapError(err, "payment", map[string]any{"payment_id": p.ID})
	}
	if err := checkVersionedUpdate(result, "payment", p.ID, p.Version); err != nil {
		return err
	}
	p.Version++
	return nil
}

func paymentWhere(f *types.PaymentFilter) *where {
	w := newWhere().add("status = ?", types.StatusPublished)
	if f == nil {
		return w
	}
	if f.OrgID != "" {
		w.add("org_id = ?", f.OrgID)
	}
	if f.InvoiceID != "" {
		w.add("invoice_id = ?", f.InvoiceID)
	}
	if f.LeaseID != "" {
		w.add("lease_id = ?", f.LeaseID)
	}
	return w.in("payment_status", stringsOf(f.PaymentStatus))
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	w := paymentWhere(filter)

	var payments []*payment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments,
		`SELECT * FROM payments`+w.sql()+page(qf, "received_at"), w.args...); err != nil {
		return nil, postgres.WrapError(err, "payment", nil)
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	w := paymentWhere(filter)
	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM payments`+w.sql(), w.args...); err != nil {
		return 0, postgres.WrapError(err, "payment", nil)
	}
	return count, nil
}

func (r *paymentRepository) AppendStatusHistory(ctx context.Context, h *payment.StatusHistory) error {
	query := `
		INSERT INTO payment_status_history (
			id, payment_id, from_status, to_status, changed_by, changed_at, reason
		) VALUES (
			:id, :payment_id, :from_status, :to_status, :changed_by, :changed_at, :reason
		)`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, h); err != nil {
		return postgres.WrapError(err, "payment status history", map[string]any{
			"payment_id": h.PaymentID,
			"to_status":  h.ToStatus,
		})
	}
	return nil
}

func (r *paymentRepository) ListStatusHistory(ctx context.Context, paymentID string) ([]*payment.StatusHistory, error) {
	query := `
		SELECT * FROM payment_status_history
		WHERE payment_id = $1
		ORDER BY changed_at, id`

	var history []*payment.StatusHistory
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &history, query, paymentID); err != nil {
		return nil, postgres.WrapError(err, "payment status history", map[string]any{"payment_id": paymentID})
	}
	return history, nil
}
