package service

import (
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/api/dto"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/testutil"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/stretchr/testify/suite"
)

type LeaseSettingsServiceSuite struct {
	billingSuite
	service LeaseSettingsService
	runs    InvoiceRunService
}

func TestLeaseSettingsService(t *testing.T) {
	suite.Run(t, new(LeaseSettingsServiceSuite))
}

func (s *LeaseSettingsServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLeaseSettingsService(s.params())
	s.runs = NewInvoiceRunService(s.params())
}

func (s *LeaseSettingsServiceSuite) request(leaseID string, effectiveFrom time.Time) *dto.UpdateBillingSettingsRequest {
	return &dto.UpdateBillingSettingsRequest{
		LeaseID:         leaseID,
		BillingDay:      10,
		RentTiming:      types.RentTimingArrears,
		ProrationMethod: types.ProrationMethodThirtyDayMonth,
		TaxRate:         dec("0"),
		DueDays:         7,
		EffectiveFrom:   effectiveFrom,
	}
}

func (s *LeaseSettingsServiceSuite) TestChangesOnlyApplyToUninvoicedPeriods() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_1", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1)
	s.createCharge(l.ID, types.ChargeTypeRent, "1000", jan1, nil)

	_, err := s.runs.RunMonthlyInvoices(s.GetContext(), &dto.RunInvoicesRequest{
		OrgID:     testutil.DefaultOrgID,
		PeriodKey: "2025-03",
		RunType:   types.InvoiceRunTypeRent,
	})
	s.Require().NoError(err)

	// March 1..31 is invoiced
	_, err = s.service.UpdateBillingSettings(s.GetContext(), s.request(l.ID, date(2025, time.March, 31)))
	s.True(ierr.IsInvalidOperation(err))

	settings, err := s.service.UpdateBillingSettings(s.GetContext(), s.request(l.ID, date(2025, time.April, 1)))
	s.Require().NoError(err)
	s.Equal(10, settings.BillingDay)

	current, err := s.service.GetBillingSettings(s.GetContext(), l.ID, date(2025, time.March, 15))
	s.Require().NoError(err)
	s.Equal(types.RentTimingAdvance, current.RentTiming)

	next, err := s.service.GetBillingSettings(s.GetContext(), l.ID, date(2025, time.April, 2))
	s.Require().NoError(err)
	s.Equal(settings.ID, next.ID)
}

func (s *LeaseSettingsServiceSuite) TestValidation() {
	l := s.createLease("lease_1", date(2025, time.January, 1), nil)

	req := s.request(l.ID, date(2025, time.January, 1))
	req.BillingDay = 31
	_, err := s.service.UpdateBillingSettings(s.GetContext(), req)
	s.True(ierr.IsValidation(err))

	req = s.request(l.ID, date(2025, time.January, 1))
	req.RentTiming = "sometimes"
	_, err = s.service.UpdateBillingSettings(s.GetContext(), req)
	s.True(ierr.IsValidation(err))

	_, err = s.service.UpdateBillingSettings(s.GetContext(), s.request("lease_missing", date(2025, time.January, 1)))
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetBillingSettings(s.GetContext(), l.ID, date(2025, time.January, 1))
	s.True(ierr.IsNotFound(err))
}

func (s *LeaseSettingsServiceSuite) TestSameDayVersionConflicts() {
	l := s.createLease("lease_1", date(2025, time.January, 1), nil)

	_, err := s.service.UpdateBillingSettings(s.GetContext(), s.request(l.ID, date(2025, time.May, 1)))
	s.Require().NoError(err)
	_, err = s.service.UpdateBillingSettings(s.GetContext(), s.request(l.ID, date(2025, time.May, 1)))
	s.True(ierr.IsAlreadyExists(err))
}
