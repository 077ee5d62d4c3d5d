package invoice

import (
	"context"
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Builder assembles a draft invoice from resolved lines. The invoice it
// returns owns copies of the lines, so later edits to the inputs do not leak in.
type Builder struct {
	orgID          string
	leaseID        string
	periodKey      types.PeriodKey
	runType        types.InvoiceRunType
	period         types.Period
	taxRate        decimal.Decimal
	dueDays        int
	idempotencyKey *string
	lines          []*InvoiceLine
}

func NewBuilder(orgID, leaseID string, periodKey types.PeriodKey, runType types.InvoiceRunType, period types.Period) *Builder {
	return &Builder{
		orgID:     orgID,
		leaseID:   leaseID,
		periodKey: periodKey,
		runType:   runType,
		period:    period,
		taxRate:   decimal.Zero,
	}
}

// WithTax applies rate to taxable lines. A zero rate disables tax.
func (b *Builder) WithTax(rate decimal.Decimal) *Builder {
	b.taxRate = rate
	return b
}

func (b *Builder) WithDueDays(days int) *Builder {
	b.dueDays = days
	return b
}

func (b *Builder) WithIdempotencyKey(key string) *Builder {
	if key != "" {
		b.idempotencyKey = &key
	}
	return b
}

func (b *Builder) AddLines(lines ...*InvoiceLine) *Builder {
	b.lines = append(b.lines, lines...)
	return b
}

// Build returns the draft or ErrNothingToBill when there is nothing to charge
func (b *Builder) Build(ctx context.Context, now time.Time) (*Invoice, error) {
	if b.orgID == "" || b.leaseID == "" {
		return nil, ierr.NewError("org and lease are required").
			WithHint("Please provide the organization and lease of the invoice").
			Mark(ierr.ErrValidation)
	}
	if err := b.period.Validate(); err != nil {
		return nil, err
	}
	if b.taxRate.IsNegative() {
		return nil, ierr.NewError("tax rate must not be negative").
			Mark(ierr.ErrValidation)
	}

	inv := &Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		OrgID:          b.orgID,
		LeaseID:        b.leaseID,
		PeriodKey:      b.periodKey,
		RunType:        b.runType,
		PeriodStart:    b.period.Start,
		PeriodEnd:      b.period.End,
		TaxRate:        b.taxRate,
		CreditedAmount: decimal.Zero,
		InvoiceStatus:  types.InvoiceStatusDraft,
		IdempotencyKey: b.idempotencyKey,
		DueDays:        b.dueDays,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx, now),
	}

	lines := make([]*InvoiceLine, 0, len(b.lines))
	for _, l := range b.lines {
		if l.Amount.IsNegative() {
			return nil, ierr.NewError("invoice line amount must not be negative").
				WithReportableDetails(map[string]any{
					"charge_id": l.ChargeID,
					"amount":    l.Amount,
				}).
				Mark(ierr.ErrValidation)
		}
		if l.Amount.IsZero() {
			continue
		}
		line := *l
		if line.ID == "" {
			line.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE)
		}
		line.InvoiceID = inv.ID
		lines = append(lines, &line)
	}

	inv.Lines = lines
	inv.recalculate()

	if len(inv.Lines) == 0 || !inv.TotalAmount.IsPositive() {
		return nil, ErrNothingToBill
	}
	return inv, nil
}
