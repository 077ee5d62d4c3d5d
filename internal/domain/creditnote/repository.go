package creditnote

import (
	"context"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for credit note persistence
type Repository interface {
	Create(ctx context.Context, cn *CreditNote) error
	Get(ctx context.Context, id string) (*CreditNote, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*CreditNote, error)

	// SumByInvoice totals the notes of one type issued against an invoice
	SumByInvoice(ctx context.Context, invoiceID string, noteType types.CreditNoteType) (decimal.Decimal, error)
}
