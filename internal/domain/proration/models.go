package proration

import (
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator converts a charge and a period into the amount owed for it
type Calculator interface {
	// Prorate returns the amount owed for the part of [periodStart, periodEnd]
	// covered by both the lease term and the charge's effective range.
	// leaseEnd nil means the lease is open-ended.
	Prorate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) decimal.Decimal

	// Calculate is Prorate with the overlap details used to stamp invoice lines
	Calculate(charge Chargeable, periodStart, periodEnd, leaseStart time.Time, leaseEnd *time.Time) Result

	Method() types.ProrationMethod
}

// Chargeable is the part of a charge definition proration looks at
type Chargeable interface {
	GetAmount() decimal.Decimal
	GetEffectiveFrom() time.Time
	GetEffectiveTo() *time.Time
}

// Result describes one proration
type Result struct {
	Amount      decimal.Decimal       `json:"amount"`
	Overlap     types.Period          `json:"overlap"`
	OverlapDays int                   `json:"overlap_days"`
	PeriodDays  int                   `json:"period_days"`
	Prorated    bool                  `json:"prorated"`
	Method      types.ProrationMethod `json:"method"`
}

// IsZero reports whether nothing is owed
func (r Result) IsZero() bool {
	return r.OverlapDays == 0
}
