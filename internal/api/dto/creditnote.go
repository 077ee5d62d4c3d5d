package dto

import (
	"github.com/flexprice/leasebill/internal/domain/creditnote"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/shopspring/decimal"
)

// IssueCreditNoteRequest reduces what is owed on an issued invoice. The
// note type is derived from the invoice: an adjustment while a balance is
// outstanding, a refund note once it is paid.
type IssueCreditNoteRequest struct {
	InvoiceID string          `json:"invoice_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Reason    string          `json:"reason" validate:"required,max=500"`
}

func (r *IssueCreditNoteRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ListCreditNotesResponse = types.ListResponse[*creditnote.CreditNote]
