package service

import (
	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/domain/proration"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// ResolveInput is everything a resolver needs to price one lease for one period
type ResolveInput struct {
	Lease     *lease.Lease
	Settings  *lease.BillingSettings
	PeriodKey types.PeriodKey
	Charges   []*charge.ChargeDefinition
}

// ChargeResolver turns charge definitions into invoice lines. Resolvers do
// no I/O, the caller loads the charges for Period first.
type ChargeResolver interface {
	// Period is the range billed for the input's period key
	Period(in ResolveInput) (types.Period, error)
	Resolve(in ResolveInput) ([]*invoice.InvoiceLine, error)
}

// ResolversFor returns the resolvers of a run type in line order
func ResolversFor(runType types.InvoiceRunType) []ChargeResolver {
	switch runType {
	case types.InvoiceRunTypeRent:
		return []ChargeResolver{&RentResolver{}, &RecurringChargeResolver{}}
	case types.InvoiceRunTypeUtility:
		return []ChargeResolver{&UtilityResolver{}}
	default:
		return nil
	}
}

// RentServicePeriod is the billing period of the key when rent is paid in
// advance, and the one before it when rent is paid in arrears.
func RentServicePeriod(key types.PeriodKey, settings *lease.BillingSettings) (types.Period, error) {
	if settings.RentTiming == types.RentTimingArrears {
		prev, err := key.Previous()
		if err != nil {
			return types.Period{}, err
		}
		key = prev
	}
	return key.BillingPeriod(settings.BillingDay)
}

// RentResolver bills one line per rent definition overlapping the service
// period. An escalation mid-period yields two prorated lines.
type RentResolver struct{}

func (r *RentResolver) Period(in ResolveInput) (types.Period, error) {
	return RentServicePeriod(in.PeriodKey, in.Settings)
}

func (r *RentResolver) Resolve(in ResolveInput) ([]*invoice.InvoiceLine, error) {
	return prorateCharges(r, in, types.ChargeTypeRent)
}

// RecurringChargeResolver bills maintenance, parking and similar fixed
// charges over the same service period as rent.
type RecurringChargeResolver struct{}

func (r *RecurringChargeResolver) Period(in ResolveInput) (types.Period, error) {
	return RentServicePeriod(in.PeriodKey, in.Settings)
}

func (r *RecurringChargeResolver) Resolve(in ResolveInput) ([]*invoice.InvoiceLine, error) {
	return prorateCharges(r, in, types.ChargeTypeRecurring)
}

func prorateCharges(r ChargeResolver, in ResolveInput, chargeType types.ChargeType) ([]*invoice.InvoiceLine, error) {
	period, err := r.Period(in)
	if err != nil {
		return nil, err
	}
	calc := proration.NewCalculator(in.Settings.ProrationMethod)

	lines := make([]*invoice.InvoiceLine, 0)
	for _, c := range in.Charges {
		if c.ChargeType != chargeType {
			continue
		}
		res := calc.Calculate(c, period.Start, period.End, in.Lease.StartDate, in.Lease.EndDate)
		if res.IsZero() {
			continue
		}
		line := &invoice.InvoiceLine{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			ChargeID:    c.ID,
			ChargeType:  c.ChargeType,
			Description: c.Description,
			Quantity:    decimal.NewFromInt(1),
			UnitAmount:  res.Amount,
			Amount:      res.Amount,
			Taxable:     c.Taxable,
			PeriodStart: res.Overlap.Start,
			PeriodEnd:   res.Overlap.End,
			Prorated:    res.Prorated,
		}
		if res.Prorated {
			line.ProrationMethod = res.Method
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// UtilityResolver bills utility statements in arrears. A statement belongs
// to the run whose window contains its end date and is never prorated.
type UtilityResolver struct{}

func (r *UtilityResolver) Period(in ResolveInput) (types.Period, error) {
	return in.PeriodKey.Window()
}

func (r *UtilityResolver) Resolve(in ResolveInput) ([]*invoice.InvoiceLine, error) {
	window, err := r.Period(in)
	if err != nil {
		return nil, err
	}

	lines := make([]*invoice.InvoiceLine, 0)
	for _, c := range in.Charges {
		if c.ChargeType != types.ChargeTypeUtility || !window.Contains(c.StatementEnd()) {
			continue
		}
		amount, qty, unit, err := c.UtilityAmount()
		if err != nil {
			return nil, err
		}
		if amount.IsNegative() {
			return nil, ierr.NewError("utility amount must not be negative").
				WithReportableDetails(map[string]any{
					"charge_id": c.ID,
					"amount":    amount,
				}).
				Mark(ierr.ErrValidation)
		}
		lines = append(lines, &invoice.InvoiceLine{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			ChargeID:    c.ID,
			ChargeType:  c.ChargeType,
			Description: c.Description,
			Quantity:    qty,
			UnitAmount:  unit,
			Amount:      amount.RoundBank(2),
			Taxable:     c.Taxable,
			PeriodStart: types.TruncateToDay(c.EffectiveFrom),
			PeriodEnd:   c.StatementEnd(),
		})
	}
	return lines, nil
}
