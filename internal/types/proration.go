package types

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/samber/lo"
)

// ProrationMethod selects how a partial period is converted into an amount
type ProrationMethod string

const (
	ProrationMethodActualDaysInMonth ProrationMethod = "actual_days_in_month"
	ProrationMethodThirtyDayMonth    ProrationMethod = "thirty_day_month"
)

func (m ProrationMethod) String() string {
	return string(m)
}

func (m ProrationMethod) Validate() error {
	allowed := []ProrationMethod{
		ProrationMethodActualDaysInMonth,
		ProrationMethodThirtyDayMonth,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid proration method").
			WithHint("Please provide a valid proration method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RentTiming defines when rent is invoiced relative to the period it covers
// ADVANCE: invoiced before the period begins
// ARREARS: invoiced after the period ends
type RentTiming string

const (
	RentTimingAdvance RentTiming = "advance"
	RentTimingArrears RentTiming = "arrears"
)

func (t RentTiming) String() string {
	return string(t)
}

func (t RentTiming) Validate() error {
	allowed := []RentTiming{
		RentTimingAdvance,
		RentTimingArrears,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid rent timing").
			WithHint("Rent timing must be advance or arrears").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
