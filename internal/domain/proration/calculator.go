package proration

import (
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

const roundingPlaces = 2

var thirty = decimal.NewFromInt(30)

// NewCalculator returns the strategy for the given method.
// Unknown methods fall back to actual days in month.
func NewCalculator(method types.ProrationMethod) Calculator {
	switch method {
	case types.ProrationMethodThirtyDayMonth:
		return &thirtyDayMonthCalculator{}
	default:
		return &actualDaysInMonthCalculator{}
	}
}

// actualDaysInMonthCalculator divides by the real length of the month the
// period starts in, so February uses 28 or 29.
type actualDaysInMonthCalculator struct{}

func (c *actualDaysInMonthCalculator) Method() types.ProrationMethod {
	return types.ProrationMethodActualDaysInMonth
}

func (c *actualDaysInMonthCalculator) Prorate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) decimal.Decimal {
	return c.Calculate(charge, periodStart, periodEnd, leaseStart, leaseEnd).Amount
}

func (c *actualDaysInMonthCalculator) Calculate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) Result {
	divisor := decimal.NewFromInt(int64(types.DaysInMonth(periodStart)))
	return calculate(c.Method(), divisor, charge, periodStart, periodEnd, leaseStart, leaseEnd)
}

// thirtyDayMonthCalculator treats every month as 30 days
type thirtyDayMonthCalculator struct{}

func (c *thirtyDayMonthCalculator) Method() types.ProrationMethod {
	return types.ProrationMethodThirtyDayMonth
}

func (c *thirtyDayMonthCalculator) Prorate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) decimal.Decimal {
	return c.Calculate(charge, periodStart, periodEnd, leaseStart, leaseEnd).Amount
}

func (c *thirtyDayMonthCalculator) Calculate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) Result {
	return calculate(c.Method(), thirty, charge, periodStart, periodEnd, leaseStart, leaseEnd)
}

// calculate intersects the period with the lease term and the charge range,
// then scales the amount by overlap/divisor. A full-period overlap returns the
// amount untouched and no result ever exceeds the amount. Rounding happens once.
func calculate(
	method types.ProrationMethod,
	divisor decimal.Decimal,
	charge Chargeable,
	periodStart, periodEnd, leaseStart time.Time,
	leaseEnd *time.Time,
) Result {
	period := types.NewPeriod(periodStart, periodEnd)
	result := Result{
		Amount:     decimal.Zero,
		PeriodDays: period.Days(),
		Method:     method,
	}
	if result.PeriodDays == 0 {
		return result
	}

	overlap, ok := period.ClampOpen(leaseStart, leaseEnd)
	if ok {
		overlap, ok = overlap.ClampOpen(charge.GetEffectiveFrom(), charge.GetEffectiveTo())
	}
	if !ok {
		return result
	}

	result.Overlap = overlap
	result.OverlapDays = overlap.Days()

	amount := charge.GetAmount()
	if overlap.Start.Equal(period.Start) && overlap.End.Equal(period.End) {
		result.Amount = amount
		return result
	}

	result.Prorated = true
	prorated := amount.Mul(decimal.NewFromInt(int64(result.OverlapDays))).Div(divisor)
	if prorated.GreaterThan(amount) {
		prorated = amount
	}
	result.Amount = prorated.RoundBank(roundingPlaces)
	return result
}
