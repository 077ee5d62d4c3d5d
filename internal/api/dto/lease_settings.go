package dto

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
	"github.com/shopspring/decimal"
)

// UpdateBillingSettingsRequest creates a new settings version for a lease
type UpdateBillingSettingsRequest struct {
	LeaseID         string                `json:"lease_id" validate:"required"`
	BillingDay      int                   `json:"billing_day" validate:"min=1,max=28"`
	RentTiming      types.RentTiming      `json:"rent_timing" validate:"required"`
	ProrationMethod types.ProrationMethod `json:"proration_method" validate:"required"`
	TaxApplicable   bool                  `json:"tax_applicable"`
	TaxRate         decimal.Decimal       `json:"tax_rate" validate:"decimal_gte0"`
	DueDays         int                   `json:"due_days" validate:"min=0"`
	EffectiveFrom   time.Time             `json:"effective_from" validate:"required"`
}

func (r *UpdateBillingSettingsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ToBillingSettings(context.Background(), time.Time{}).Validate()
}

func (r *UpdateBillingSettingsRequest) ToBillingSettings(ctx context.Context, now time.Time) *lease.BillingSettings {
	return &lease.BillingSettings{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_SETTINGS),
		LeaseID:         r.LeaseID,
		BillingDay:      r.BillingDay,
		RentTiming:      r.RentTiming,
		ProrationMethod: r.ProrationMethod,
		TaxApplicable:   r.TaxApplicable,
		TaxRate:         r.TaxRate,
		DueDays:         r.DueDays,
		EffectiveFrom:   types.TruncateToDay(r.EffectiveFrom),
		BaseModel:       types.GetDefaultBaseModel(ctx, now),
	}
}
