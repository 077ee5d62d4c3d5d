package lease

import (
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// Lease is the agreement a tenant is billed under
type Lease struct {
	ID          string            `db:"id" json:"id"`
	OrgID       string            `db:"org_id" json:"org_id"`
	TenantName  string            `db:"tenant_name" json:"tenant_name"`
	UnitRef     string            `db:"unit_ref" json:"unit_ref"`
	StartDate   time.Time         `db:"start_date" json:"start_date"`
	EndDate     *time.Time        `db:"end_date" json:"end_date,omitempty"`
	LeaseStatus types.LeaseStatus `db:"lease_status" json:"lease_status"`

	types.BaseModel
}

// Term returns the lease term clipped to the given period
func (l *Lease) Term(p types.Period) (types.Period, bool) {
	return p.ClampOpen(l.StartDate, l.EndDate)
}

// BillingSettings is one version of a lease's billing configuration.
// A change creates a new row effective from a later date; rows are never edited.
type BillingSettings struct {
	ID              string                `db:"id" json:"id"`
	LeaseID         string                `db:"lease_id" json:"lease_id"`
	BillingDay      int                   `db:"billing_day" json:"billing_day"`
	RentTiming      types.RentTiming      `db:"rent_timing" json:"rent_timing"`
	ProrationMethod types.ProrationMethod `db:"proration_method" json:"proration_method"`
	TaxApplicable   bool                  `db:"tax_applicable" json:"tax_applicable"`
	TaxRate         decimal.Decimal       `db:"tax_rate" json:"tax_rate"`
	DueDays         int                   `db:"due_days" json:"due_days"`
	EffectiveFrom   time.Time             `db:"effective_from" json:"effective_from"`

	types.BaseModel
}

func (s *BillingSettings) Validate() error {
	if s.BillingDay < 1 || s.BillingDay > 28 {
		return ierr.NewErrorf("billing day %d out of range", s.BillingDay).
			WithHint("Billing day must be between 1 and 28").
			WithReportableDetails(map[string]any{
				"billing_day": s.BillingDay,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := s.RentTiming.Validate(); err != nil {
		return err
	}
	if err := s.ProrationMethod.Validate(); err != nil {
		return err
	}
	if s.TaxRate.IsNegative() {
		return ierr.NewError("tax rate must not be negative").
			WithHint("Please provide a valid tax rate").
			Mark(ierr.ErrValidation)
	}
	if s.DueDays < 0 {
		return ierr.NewError("due days must not be negative").
			WithHint("Please provide a valid number of due days").
			Mark(ierr.ErrValidation)
	}
	return nil
}
