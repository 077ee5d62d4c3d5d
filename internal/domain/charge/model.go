package charge

import (
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// ChargeDefinition is an amount a lease owes over an effective date range.
// For utility charges the range is the statement period.
type ChargeDefinition struct {
	ID            string           `db:"id" json:"id"`
	LeaseID       string           `db:"lease_id" json:"lease_id"`
	OrgID         string           `db:"org_id" json:"org_id"`
	ChargeType    types.ChargeType `db:"charge_type" json:"charge_type"`
	Description   string           `db:"description" json:"description"`
	Amount        decimal.Decimal  `db:"amount" json:"amount"`
	EffectiveFrom time.Time        `db:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time       `db:"effective_to" json:"effective_to,omitempty"`
	Taxable       bool             `db:"taxable" json:"taxable"`
	Utility       *UtilityReading  `db:"-" json:"utility,omitempty"`

	types.BaseModel
}

// UtilityReading marks a charge as a utility statement
type UtilityReading struct {
	Basis           types.UtilityBasis `json:"basis"`
	MeterID         string             `json:"meter_id,omitempty"`
	PreviousReading decimal.Decimal    `json:"previous_reading"`
	CurrentReading  decimal.Decimal    `json:"current_reading"`
	Rate            decimal.Decimal    `json:"rate"`
	BBPSBillerRef   string             `json:"bbps_biller_ref,omitempty"`
}

// Range returns the effective range clipped to the given period
func (c *ChargeDefinition) Range(p types.Period) (types.Period, bool) {
	return p.ClampOpen(c.EffectiveFrom, c.EffectiveTo)
}

// StatementEnd is the last day a utility statement covers
func (c *ChargeDefinition) StatementEnd() time.Time {
	if c.EffectiveTo == nil {
		return types.TruncateToDay(c.EffectiveFrom)
	}
	return types.TruncateToDay(*c.EffectiveTo)
}

// UtilityAmount returns the flat amount or delta x rate, unrounded
func (c *ChargeDefinition) UtilityAmount() (amount, quantity, unitAmount decimal.Decimal, err error) {
	if c.Utility == nil || c.Utility.Basis == types.UtilityBasisFlat {
		return c.Amount, decimal.NewFromInt(1), c.Amount, nil
	}

	delta := c.Utility.CurrentReading.Sub(c.Utility.PreviousReading)
	if delta.IsNegative() {
		return decimal.Zero, decimal.Zero, decimal.Zero, ierr.NewError("meter reading went backwards").
			WithHint("Current meter reading must not be lower than the previous reading").
			WithReportableDetails(map[string]any{
				"charge_id":        c.ID,
				"meter_id":         c.Utility.MeterID,
				"previous_reading": c.Utility.PreviousReading,
				"current_reading":  c.Utility.CurrentReading,
			}).
			Mark(ierr.ErrValidation)
	}
	return delta.Mul(c.Utility.Rate), delta, c.Utility.Rate, nil
}

func (c *ChargeDefinition) Validate() error {
	if err := c.ChargeType.Validate(); err != nil {
		return err
	}
	if c.Amount.IsNegative() {
		return ierr.NewError("charge amount must not be negative").
			WithHint("Please provide a valid charge amount").
			WithReportableDetails(map[string]any{
				"charge_id": c.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if c.EffectiveTo != nil && c.EffectiveTo.Before(c.EffectiveFrom) {
		return ierr.NewError("charge ends before it starts").
			WithHint("Effective to must not be before effective from").
			Mark(ierr.ErrValidation)
	}
	if c.Utility != nil {
		if c.ChargeType != types.ChargeTypeUtility {
			return ierr.NewError("only utility charges carry readings").
				WithHint("Remove the utility reading or change the charge type").
				Mark(ierr.ErrValidation)
		}
		if err := c.Utility.Basis.Validate(); err != nil {
			return err
		}
	}
	return nil
}
