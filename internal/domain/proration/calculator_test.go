package proration

import (
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type testCharge struct {
	amount decimal.Decimal
	from   time.Time
	to     *time.Time
}

func (c testCharge) GetAmount() decimal.Decimal  { return c.amount }
func (c testCharge) GetEffectiveFrom() time.Time { return c.from }
func (c testCharge) GetEffectiveTo() *time.Time  { return c.to }

func d(y int, m time.Month, day int) time.Time {
	return types.Date(y, m, day)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestCalculator_Prorate(t *testing.T) {
	thousand := testCharge{amount: decimal.NewFromInt(1000), from: d(2020, time.January, 1)}

	tests := []struct {
		name        string
		method      types.ProrationMethod
		charge      testCharge
		periodStart time.Time
		periodEnd   time.Time
		leaseStart  time.Time
		leaseEnd    *time.Time
		expected    decimal.Decimal
	}{
		{
			name:        "actual_full_february_non_leap",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2025, time.February, 1),
			periodEnd:   d(2025, time.February, 28),
			leaseStart:  d(2024, time.June, 1),
			expected:    decimal.NewFromInt(1000),
		},
		{
			name:        "thirty_day_full_february_is_exact",
			method:      types.ProrationMethodThirtyDayMonth,
			charge:      thousand,
			periodStart: d(2025, time.February, 1),
			periodEnd:   d(2025, time.February, 28),
			leaseStart:  d(2024, time.June, 1),
			expected:    decimal.NewFromInt(1000),
		},
		{
			name:        "thirty_day_full_31_day_month_is_exact",
			method:      types.ProrationMethodThirtyDayMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2024, time.June, 1),
			expected:    decimal.NewFromInt(1000),
		},
		{
			name:        "actual_half_february_is_fifty_percent",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2025, time.February, 1),
			periodEnd:   d(2025, time.February, 28),
			leaseStart:  d(2025, time.February, 15),
			expected:    decimal.NewFromInt(500),
		},
		{
			name:        "actual_half_february_leap_year",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2024, time.February, 1),
			periodEnd:   d(2024, time.February, 29),
			leaseStart:  d(2024, time.February, 16),
			expected:    decimal.RequireFromString("482.76"), // 1000 * 14/29
		},
		{
			name:        "actual_14_of_31_days",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2025, time.March, 18),
			expected:    decimal.RequireFromString("451.61"), // 1000 * 14/31
		},
		{
			name:        "thirty_day_14_of_31_days",
			method:      types.ProrationMethodThirtyDayMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2025, time.March, 18),
			expected:    decimal.RequireFromString("466.67"), // 1000 * 14/30
		},
		{
			name:        "thirty_day_capped_at_amount",
			method:      types.ProrationMethodThirtyDayMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2025, time.March, 1),
			leaseEnd:    ptr(d(2025, time.March, 30)),
			expected:    decimal.NewFromInt(1000),
		},
		{
			name:        "lease_ends_mid_period",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2025, time.April, 1),
			periodEnd:   d(2025, time.April, 30),
			leaseStart:  d(2024, time.April, 1),
			leaseEnd:    ptr(d(2025, time.April, 10)),
			expected:    decimal.RequireFromString("333.33"), // 1000 * 10/30
		},
		{
			name:   "charge_starts_mid_period",
			method: types.ProrationMethodActualDaysInMonth,
			charge: testCharge{
				amount: decimal.NewFromInt(1000),
				from:   d(2025, time.March, 11),
			},
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2024, time.March, 1),
			expected:    decimal.RequireFromString("677.42"), // 1000 * 21/31
		},
		{
			name:   "bankers_rounding_half_to_even",
			method: types.ProrationMethodThirtyDayMonth,
			charge: testCharge{
				amount: decimal.RequireFromString("10.05"),
				from:   d(2020, time.January, 1),
			},
			periodStart: d(2025, time.April, 1),
			periodEnd:   d(2025, time.April, 30),
			leaseStart:  d(2025, time.April, 16),
			expected:    decimal.RequireFromString("5.02"), // 5.025 rounds to even
		},
		{
			name:        "lease_starts_after_period",
			method:      types.ProrationMethodActualDaysInMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2025, time.April, 1),
			expected:    decimal.Zero,
		},
		{
			name:        "lease_ended_before_period",
			method:      types.ProrationMethodThirtyDayMonth,
			charge:      thousand,
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2024, time.March, 1),
			leaseEnd:    ptr(d(2025, time.February, 28)),
			expected:    decimal.Zero,
		},
		{
			name:   "charge_expired_before_period",
			method: types.ProrationMethodActualDaysInMonth,
			charge: testCharge{
				amount: decimal.NewFromInt(1000),
				from:   d(2024, time.January, 1),
				to:     ptr(d(2025, time.January, 31)),
			},
			periodStart: d(2025, time.March, 1),
			periodEnd:   d(2025, time.March, 31),
			leaseStart:  d(2024, time.January, 1),
			expected:    decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(tt.method)
			got := calc.Prorate(tt.charge, tt.periodStart, tt.periodEnd, tt.leaseStart, tt.leaseEnd)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestStrategiesDivergeOnLongMonths(t *testing.T) {
	charge := testCharge{amount: decimal.NewFromInt(1000), from: d(2020, time.January, 1)}
	start, end, leaseStart := d(2025, time.March, 1), d(2025, time.March, 31), d(2025, time.March, 18)

	actual := NewCalculator(types.ProrationMethodActualDaysInMonth).Prorate(charge, start, end, leaseStart, nil)
	thirtyDay := NewCalculator(types.ProrationMethodThirtyDayMonth).Prorate(charge, start, end, leaseStart, nil)
	assert.False(t, actual.Equal(thirtyDay))
}

func TestFullOverlapNeverLosesToRounding(t *testing.T) {
	amounts := []string{"0.01", "333.33", "1000", "12345.67", "99999.99"}
	periods := [][2]time.Time{
		{d(2025, time.February, 1), d(2025, time.February, 28)},
		{d(2024, time.February, 1), d(2024, time.February, 29)},
		{d(2025, time.April, 1), d(2025, time.April, 30)},
		{d(2025, time.January, 15), d(2025, time.February, 14)},
	}
	methods := []types.ProrationMethod{types.ProrationMethodActualDaysInMonth, types.ProrationMethodThirtyDayMonth}

	for _, m := range methods {
		for _, a := range amounts {
			for _, p := range periods {
				charge := testCharge{amount: decimal.RequireFromString(a), from: d(2020, time.January, 1)}
				got := NewCalculator(m).Prorate(charge, p[0], p[1], d(2020, time.January, 1), nil)
				assert.True(t, charge.amount.Equal(got), "%s %s %v: got %s", m, a, p, got)
			}
		}
	}
}

func TestCalculateStampsDetails(t *testing.T) {
	charge := testCharge{amount: decimal.NewFromInt(1000), from: d(2020, time.January, 1)}
	r := NewCalculator(types.ProrationMethodThirtyDayMonth).
		Calculate(charge, d(2025, time.March, 1), d(2025, time.March, 31), d(2025, time.March, 18), nil)

	assert.True(t, r.Prorated)
	assert.Equal(t, 14, r.OverlapDays)
	assert.Equal(t, 31, r.PeriodDays)
	assert.Equal(t, types.ProrationMethodThirtyDayMonth, r.Method)
	assert.Equal(t, d(2025, time.March, 18), r.Overlap.Start)

	zero := NewCalculator(types.ProrationMethodActualDaysInMonth).
		Calculate(charge, d(2025, time.March, 1), d(2025, time.March, 31), d(2025, time.May, 1), nil)
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Prorated)
}
