package types

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/samber/lo"
)

// ChargeType is the kind of charge definition attached to a lease
type ChargeType string

const (
	ChargeTypeRent      ChargeType = "rent"
	ChargeTypeRecurring ChargeType = "recurring"
	ChargeTypeUtility   ChargeType = "utility"
)

func (t ChargeType) String() string {
	return string(t)
}

func (t ChargeType) Validate() error {
	allowed := []ChargeType{
		ChargeTypeRent,
		ChargeTypeRecurring,
		ChargeTypeUtility,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid charge type").
			WithHint("Please provide a valid charge type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UtilityBasis tells how a utility statement amount is derived
type UtilityBasis string

const (
	UtilityBasisFlat    UtilityBasis = "flat"
	UtilityBasisMetered UtilityBasis = "metered"
)

func (b UtilityBasis) Validate() error {
	allowed := []UtilityBasis{UtilityBasisFlat, UtilityBasisMetered}
	if !lo.Contains(allowed, b) {
		return ierr.NewError("invalid utility basis").
			WithHint("Utility basis must be flat or metered").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LeaseStatus is the state of a lease agreement
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
)
