package postgres

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/paymentconfirmation"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
)

type paymentConfirmationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPaymentConfirmationRepository creates a new instance of payment confirmation request repository
func NewPaymentConfirmationRepository(db *postgres.DB, logger *logger.Logger) paymentconfirmation.Repository {
	return &paymentConfirmationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentConfirmationRepository) Create(ctx context.Context, req *paymentconfirmation.Request) error {
	query := `
		INSERT INTO payment_confirmation_requests (
			id, org_id, invoice_id, lease_id, amount, claimed_date, proof_file_ref, notes,
			request_status, payment_id, reviewed_by, reviewed_at, review_note, rejection_reason,
			version, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :invoice_id, :lease_id, :amount, :claimed_date, :proof_file_ref, :notes,
			:request_status, :payment_id, :reviewed_by, :reviewed_at, :review_note, :rejection_reason,
			:version, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment confirmation request",
		"request_id", req.ID,
		"invoice_id", req.InvoiceID,
		"amount", req.Amount,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, req); err != nil {
		return postgres.WrapError(err, "payment confirmation request", map[string]any{
			"request_id": req.ID,
			"invoice_id": req.InvoiceID,
		})
	}
	return nil
}

func (r *paymentConfirmationRepository) Get(ctx context.Context, id string) (*paymentconfirmation.Request, error) {
	query := `SELECT * FROM payment_confirmation_requests WHERE id = $1 AND status = $2`

	var req paymentconfirmation.Request
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &req, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "payment confirmation request", map[string]any{"request_id": id})
	}
	return &req, nil
}

// Update is a compare-and-set on version so two reviewers cannot both
// move a request out of pending
func (r *paymentConfirmationRepository) Update(ctx context.Context, req *paymentconfirmation.Request) error {
	query := `
		UPDATE payment_confirmation_requests SET
			request_status = :request_status,
			payment_id = :payment_id,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			review_note = :review_note,
			rejection_reason = :rejection_reason,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by,
			version = version + 1
		WHERE id = :id
		AND version = :version`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, req)
	if err != nil {
		return postgres.WrapError(err, "payment confirmation request", map[string]any{"request_id": req.ID})
	}
	if err := checkVersionedUpdate(result, "payment confirmation request", req.ID, req.Version); err != nil {
		return err
	}
	req.Version++
	return nil
}

func confirmationWhere(f *types.ConfirmationRequestFilter) *where {
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
	return w.in("request_status", stringsOf(f.RequestStatus))
}

func (r *paymentConfirmationRepository) List(ctx context.Context, filter *types.ConfirmationRequestFilter) ([]*paymentconfirmation.Request, error) {
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	w := confirmationWhere(filter)

	var requests []*paymentconfirmation.Request
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &requests,
		`SELECT * FROM payment_confirmation_requests`+w.sql()+page(qf, "created_at"), w.args...); err != nil {
		return nil, postgres.WrapError(err, "payment confirmation request", nil)
	}
	return requests, nil
}

func (r *paymentConfirmationRepository) Count(ctx context.Context, filter *types.ConfirmationRequestFilter) (int, error) {
	w := confirmationWhere(filter)
	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM payment_confirmation_requests`+w.sql(), w.args...); err != nil {
		return 0, postgres.WrapError(err, "payment confirmation request", nil)
	}
	return count, nil
}
