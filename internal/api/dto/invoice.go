package dto

import (
	"time"

	"github.com/flexprice/leasebill/internal/domain/invoice"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest asks for the draft invoice of one lease and period
type GenerateInvoiceRequest struct {
	OrgID          string               `json:"org_id" validate:"required"`
	LeaseID        string               `json:"lease_id" validate:"required"`
	PeriodKey      types.PeriodKey      `json:"period_key" validate:"required"`
	RunType        types.InvoiceRunType `json:"run_type" validate:"required"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.PeriodKey.Validate(); err != nil {
		return err
	}
	if err := r.RunType.Validate(); err != nil {
		return err
	}
	if r.RunType == types.InvoiceRunTypeRent && !r.PeriodKey.IsMonthly() {
		return ierr.NewErrorf("rent is billed per month, got period key %s", r.PeriodKey).
			WithHint("Use a monthly period key such as 2025-03 for rent").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceLineRequest is one line of a draft edit
type InvoiceLineRequest struct {
	ChargeID    string           `json:"charge_id,omitempty"`
	ChargeType  types.ChargeType `json:"charge_type" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"decimal_gt0"`
	UnitAmount  decimal.Decimal  `json:"unit_amount" validate:"decimal_gte0"`
	Taxable     bool             `json:"taxable"`
	PeriodStart time.Time        `json:"period_start" validate:"required"`
	PeriodEnd   time.Time        `json:"period_end" validate:"required,gtefield=PeriodStart"`
}

// UpdateDraftLinesRequest replaces every line of a draft invoice
type UpdateDraftLinesRequest struct {
	Lines []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *UpdateDraftLinesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for _, l := range r.Lines {
		if err := l.ChargeType.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *UpdateDraftLinesRequest) ToInvoiceLines() []*invoice.InvoiceLine {
	lines := make([]*invoice.InvoiceLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, &invoice.InvoiceLine{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			ChargeID:    l.ChargeID,
			ChargeType:  l.ChargeType,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitAmount:  l.UnitAmount,
			Amount:      l.Quantity.Mul(l.UnitAmount).RoundBank(2),
			Taxable:     l.Taxable,
			PeriodStart: types.TruncateToDay(l.PeriodStart),
			PeriodEnd:   types.TruncateToDay(l.PeriodEnd),
		})
	}
	return lines
}

type InvoiceResponse struct {
	*invoice.Invoice
	EffectiveBalance decimal.Decimal `json:"effective_balance"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:          inv,
		EffectiveBalance: inv.EffectiveBalance(),
	}
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
