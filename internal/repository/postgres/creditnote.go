package postgres

import (
	"context"

	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/postgres"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

type creditNoteRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewCreditNoteRepository creates a new instance of credit note repository
func NewCreditNoteRepository(db *postgres.DB, logger *logger.Logger) creditnote.Repository {
	return &creditNoteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *creditNoteRepository) Create(ctx context.Context, cn *creditnote.CreditNote) error {
	query := `
		INSERT INTO credit_notes (
			id, org_id, invoice_id, credit_note_number, credit_note_type, amount, reason, issued_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :invoice_id, :credit_note_number, :credit_note_type, :amount, :reason, :issued_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating credit note",
		"credit_note_id", cn.ID,
		"invoice_id", cn.InvoiceID,
		"credit_note_type", cn.CreditNoteType,
		"amount", cn.Amount,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, cn); err != nil {
		return postgres.WrapError(err, "credit note", map[string]any{
			"credit_note_id": cn.ID,
			"invoice_id":     cn.InvoiceID,
		})
	}
	return nil
}

func (r *creditNoteRepository) Get(ctx context.Context, id string) (*creditnote.CreditNote, error) {
	query := `SELECT * FROM credit_notes WHERE id = $1 AND status = $2`

	var cn creditnote.CreditNote
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &cn, query, id, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "credit note", map[string]any{"credit_note_id": id})
	}
	return &cn, nil
}

func (r *creditNoteRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*creditnote.CreditNote, error) {
	query := `
		SELECT * FROM credit_notes
		WHERE invoice_id = $1
		AND status = $2
		ORDER BY issued_at, id`

	var notes []*creditnote.CreditNote
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &notes, query, invoiceID, types.StatusPublished); err != nil {
		return nil, postgres.WrapError(err, "credit note", map[string]any{"invoice_id": invoiceID})
	}
	return notes, nil
}

func (r *creditNoteRepository) SumByInvoice(ctx context.Context, invoiceID string, noteType types.CreditNoteType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM credit_notes
		WHERE invoice_id = $1
		AND credit_note_type = $2
		AND status = $3`

	var total decimal.Decimal
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &total, query, invoiceID, noteType, types.StatusPublished); err != nil {
		return decimal.Zero, postgres.WrapError(err, "credit note", map[string]any{"invoice_id": invoiceID})
	}
	return total, nil
}
