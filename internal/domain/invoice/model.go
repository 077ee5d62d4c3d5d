package invoice

import (
	"context"
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root of billing. BalanceAmount is always
// TotalAmount - PaidAmount; credit notes are tracked in CreditedAmount and
// reduce the effective balance without touching lines or totals.
type Invoice struct {
	ID             string               `db:"id" json:"id"`
	OrgID          string               `db:"org_id" json:"org_id"`
	LeaseID        string               `db:"lease_id" json:"lease_id"`
	PeriodKey      types.PeriodKey      `db:"period_key" json:"period_key"`
	RunType        types.InvoiceRunType `db:"run_type" json:"run_type"`
	PeriodStart    time.Time            `db:"period_start" json:"period_start"`
	PeriodEnd      time.Time            `db:"period_end" json:"period_end"`
	Lines          []*InvoiceLine       `db:"-" json:"lines"`
	SubTotal       decimal.Decimal      `db:"sub_total" json:"sub_total"`
	TaxRate        decimal.Decimal      `db:"tax_rate" json:"tax_rate"`
	TaxAmount      decimal.Decimal      `db:"tax_amount" json:"tax_amount"`
	TotalAmount    decimal.Decimal      `db:"total_amount" json:"total_amount"`
	PaidAmount     decimal.Decimal      `db:"paid_amount" json:"paid_amount"`
	BalanceAmount  decimal.Decimal      `db:"balance_amount" json:"balance_amount"`
	CreditedAmount decimal.Decimal      `db:"credited_amount" json:"credited_amount"`
	InvoiceStatus  types.InvoiceStatus  `db:"invoice_status" json:"invoice_status"`
	InvoiceNumber  *string              `db:"invoice_number" json:"invoice_number,omitempty"`
	IdempotencyKey *string              `db:"idempotency_key" json:"idempotency_key,omitempty"`
	DueDays        int                  `db:"due_days" json:"due_days"`
	DueDate        *time.Time           `db:"due_date" json:"due_date,omitempty"`
	IssuedAt       *time.Time           `db:"issued_at" json:"issued_at,omitempty"`
	PaidAt         *time.Time           `db:"paid_at" json:"paid_at,omitempty"`
	VoidedAt       *time.Time           `db:"voided_at" json:"voided_at,omitempty"`
	CancelledAt    *time.Time           `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Version        int                  `db:"version" json:"version"`

	types.BaseModel
}

// EffectiveBalance is what the tenant still owes after credit notes
func (inv *Invoice) EffectiveBalance() decimal.Decimal {
	return inv.BalanceAmount.Sub(inv.CreditedAmount)
}

// IsSettled reports whether payments and credits cover the total
func (inv *Invoice) IsSettled() bool {
	return inv.PaidAmount.Add(inv.CreditedAmount).GreaterThanOrEqual(inv.TotalAmount)
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Lines = make([]*InvoiceLine, len(inv.Lines))
	for i, l := range inv.Lines {
		line := *l
		c.Lines[i] = &line
	}
	return &c
}

// CheckInvariants verifies the balance arithmetic
func (inv *Invoice) CheckInvariants() error {
	if !inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)) {
		return ierr.NewError("balance does not equal total minus paid").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"total":      inv.TotalAmount,
				"paid":       inv.PaidAmount,
				"balance":    inv.BalanceAmount,
			}).
			Mark(ierr.ErrSystem)
	}
	if inv.PaidAmount.IsNegative() || inv.PaidAmount.Add(inv.CreditedAmount).GreaterThan(inv.TotalAmount) {
		return ierr.NewError("paid amount out of range").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"total":      inv.TotalAmount,
				"paid":       inv.PaidAmount,
				"credited":   inv.CreditedAmount,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

// Issue assigns the invoice number, stamps the due date and freezes the lines
func (inv *Invoice) Issue(number string, now time.Time) error {
	to, err := Transition(inv.InvoiceStatus, EventIssue)
	if err != nil {
		return err
	}
	if number == "" {
		return ierr.NewError("invoice number is required to issue").
			Mark(ierr.ErrValidation)
	}

	inv.InvoiceStatus = to
	inv.InvoiceNumber = &number
	inv.IssuedAt = &now
	due := types.TruncateToDay(now).AddDate(0, 0, inv.DueDays)
	inv.DueDate = &due
	return nil
}

// ReplaceLines swaps the lines of a draft and recomputes totals
func (inv *Invoice) ReplaceLines(lines []*InvoiceLine) error {
	if inv.InvoiceStatus != types.InvoiceStatusDraft {
		return ierr.NewError("invoice lines are frozen").
			WithHint("Only draft invoices can be edited, issue a credit note instead").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_status": inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	for _, l := range lines {
		l.InvoiceID = inv.ID
	}
	inv.Lines = lines
	inv.recalculate()
	return nil
}

// recalculate derives totals from lines. Only valid while nothing is paid.
func (inv *Invoice) recalculate() {
	sub, taxable := decimal.Zero, decimal.Zero
	for _, l := range inv.Lines {
		sub = sub.Add(l.Amount)
		if l.Taxable {
			taxable = taxable.Add(l.Amount)
		}
	}
	inv.SubTotal = sub
	inv.TaxAmount = taxable.Mul(inv.TaxRate).RoundBank(2)
	inv.TotalAmount = inv.SubTotal.Add(inv.TaxAmount)
	inv.PaidAmount = decimal.Zero
	inv.BalanceAmount = inv.TotalAmount
}

// ValidatePayable checks that amount can be applied to the invoice right now
func (inv *Invoice) ValidatePayable(amount decimal.Decimal) error {
	if !inv.InvoiceStatus.IsPayable() {
		return ierr.NewErrorf("invoice in status %s cannot accept payments", inv.InvoiceStatus).
			WithHint("Payments can only be applied to issued, partially paid or overdue invoices").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_status": inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if !amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Please provide a positive amount").
			Mark(ierr.ErrValidation)
	}
	if amount.GreaterThan(inv.EffectiveBalance()) {
		return ierr.NewError("payment exceeds outstanding balance").
			WithHintf("At most %s can be applied to this invoice", inv.EffectiveBalance().StringFixed(2)).
			WithReportableDetails(map[string]any{
				"invoice_id":        inv.ID,
				"amount":            amount,
				"effective_balance": inv.EffectiveBalance(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// ApplyPayment increases the paid amount and advances the status
func (inv *Invoice) ApplyPayment(amount decimal.Decimal, now time.Time) error {
	if err := inv.ValidatePayable(amount); err != nil {
		return err
	}

	paid := inv.PaidAmount.Add(amount)
	event := EventPartialPayment
	if paid.Add(inv.CreditedAmount).Equal(inv.TotalAmount) {
		event = EventFullPayment
	}
	to, err := Transition(inv.InvoiceStatus, event)
	if err != nil {
		return err
	}

	inv.PaidAmount = paid
	inv.BalanceAmount = inv.TotalAmount.Sub(paid)
	inv.InvoiceStatus = to
	if to == types.InvoiceStatusPaid {
		inv.PaidAt = &now
	}
	return nil
}

// ApplyRefund reverses part or all of what was paid
func (inv *Invoice) ApplyRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(inv.PaidAmount) {
		return ierr.NewError("refund exceeds paid amount").
			WithHintf("At most %s can be refunded", inv.PaidAmount.StringFixed(2)).
			WithReportableDetails(map[string]any{
				"invoice_id":  inv.ID,
				"amount":      amount,
				"paid_amount": inv.PaidAmount,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	paid := inv.PaidAmount.Sub(amount)
	event := EventRefundPartial
	if paid.IsZero() {
		event = EventRefundFull
	}
	to, err := Transition(inv.InvoiceStatus, event)
	if err != nil {
		return err
	}

	inv.PaidAmount = paid
	inv.BalanceAmount = inv.TotalAmount.Sub(paid)
	inv.InvoiceStatus = to
	if to != types.InvoiceStatusPaid {
		inv.PaidAt = nil
	}
	return nil
}

// ApplyCredit records an adjustment credit note. Lines and totals stay as issued.
func (inv *Invoice) ApplyCredit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() || amount.GreaterThan(inv.EffectiveBalance()) {
		return ierr.NewError("credit exceeds outstanding balance").
			WithHintf("At most %s can be credited", inv.EffectiveBalance().StringFixed(2)).
			WithReportableDetails(map[string]any{
				"invoice_id":        inv.ID,
				"amount":            amount,
				"effective_balance": inv.EffectiveBalance(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.CreditedAmount = inv.CreditedAmount.Add(amount)
	if inv.EffectiveBalance().IsZero() {
		to, err := Transition(inv.InvoiceStatus, EventFullPayment)
		if err != nil {
			return err
		}
		inv.InvoiceStatus = to
		inv.PaidAt = &now
	}
	return nil
}

// Void invalidates a draft or issued invoice
func (inv *Invoice) Void(now time.Time) error {
	to, err := Transition(inv.InvoiceStatus, EventVoid)
	if err != nil {
		return err
	}
	inv.InvoiceStatus = to
	inv.VoidedAt = &now
	return nil
}

// Cancel marks an invoice that should never have existed. Money already
// applied must be refunded first.
func (inv *Invoice) Cancel(now time.Time) error {
	if inv.PaidAmount.IsPositive() {
		return ierr.NewError("invoice has payments applied").
			WithHint("Refund the applied payments before cancelling the invoice").
			WithReportableDetails(map[string]any{
				"invoice_id":  inv.ID,
				"paid_amount": inv.PaidAmount,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	to, err := Transition(inv.InvoiceStatus, EventCancel)
	if err != nil {
		return err
	}
	inv.InvoiceStatus = to
	inv.CancelledAt = &now
	return nil
}

// IsPastDue reports whether the due date has passed with money still owed
func (inv *Invoice) IsPastDue(now time.Time) bool {
	if inv.DueDate == nil || !inv.EffectiveBalance().IsPositive() {
		return false
	}
	if inv.InvoiceStatus != types.InvoiceStatusIssued && inv.InvoiceStatus != types.InvoiceStatusPartiallyPaid {
		return false
	}
	return types.TruncateToDay(now).After(types.TruncateToDay(*inv.DueDate))
}

// MarkOverdue moves a past-due invoice to overdue. It reports false when nothing changed.
func (inv *Invoice) MarkOverdue(now time.Time) (bool, error) {
	if !inv.IsPastDue(now) {
		return false, nil
	}
	to, err := Transition(inv.InvoiceStatus, EventPastDue)
	if err != nil {
		return false, err
	}
	inv.InvoiceStatus = to
	return true, nil
}

// Touch stamps the modification audit columns
func (inv *Invoice) Touch(ctx context.Context, now time.Time) {
	inv.BaseModel.Touch(ctx, now)
}
