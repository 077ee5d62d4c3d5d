package service

import (
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/testutil"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/stretchr/testify/suite"
)

type InvoiceGenerationServiceSuite struct {
	billingSuite
	service InvoiceGenerationService
}

func TestInvoiceGenerationService(t *testing.T) {
	suite.Run(t, new(InvoiceGenerationServiceSuite))
}

func (s *InvoiceGenerationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceGenerationService(s.params())
}

func (s *InvoiceGenerationServiceSuite) request(leaseID string, key types.PeriodKey) *dto.GenerateInvoiceRequest {
	return &dto.GenerateInvoiceRequest{
		OrgID:     testutil.DefaultOrgID,
		LeaseID:   leaseID,
		PeriodKey: key,
		RunType:   types.InvoiceRunTypeRent,
	}
}

func (s *InvoiceGenerationServiceSuite) TestGenerateRentWithTax() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_tax", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1, func(bs *lease.BillingSettings) {
		bs.TaxApplicable = true
		bs.TaxRate = dec("0.18")
		bs.DueDays = 10
	})
	s.createCharge(l.ID, types.ChargeTypeRent, "30000", jan1, nil)
	s.createCharge(l.ID, types.ChargeTypeRecurring, "2000", jan1, nil, func(c *charge.ChargeDefinition) {
		c.Taxable = true
	})

	req := s.request(l.ID, "2025-03")
	req.IdempotencyKey = "key-1"
	inv, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)

	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.Len(inv.Lines, 2)
	s.Equal("32000.00", inv.SubTotal.StringFixed(2))
	s.Equal("360.00", inv.TaxAmount.StringFixed(2))
	s.Equal("32360.00", inv.TotalAmount.StringFixed(2))
	s.True(inv.BalanceAmount.Equal(inv.TotalAmount))
	s.Equal(10, inv.DueDays)
	s.Equal(date(2025, time.March, 1), inv.PeriodStart)
	s.Equal(date(2025, time.March, 31), inv.PeriodEnd)
	s.Equal("key-1", *inv.IdempotencyKey)
	s.Nil(inv.InvoiceNumber)

	// nothing is persisted by generation
	_, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceGenerationServiceSuite) TestDefaultsFromConfig() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_defaults", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1, func(bs *lease.BillingSettings) {
		bs.DueDays = 0
	})
	s.createCharge(l.ID, types.ChargeTypeRent, "1000", jan1, nil)

	inv, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
	s.Require().NoError(err)
	s.Equal(s.GetConfig().Billing.DefaultDueDays, inv.DueDays)
	s.True(inv.TaxAmount.IsZero())
	s.Nil(inv.IdempotencyKey)
}

func (s *InvoiceGenerationServiceSuite) TestSettingsVersionAsOfPeriod() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_versions", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1)
	s.createSettings(l.ID, types.RentTimingAdvance, date(2025, time.April, 1), func(bs *lease.BillingSettings) {
		bs.BillingDay = 15
	})
	s.createCharge(l.ID, types.ChargeTypeRent, "1000", jan1, nil)

	march, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
	s.Require().NoError(err)
	s.Equal(date(2025, time.March, 1), march.PeriodStart)

	april, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-04"))
	s.Require().NoError(err)
	s.Equal(date(2025, time.April, 15), april.PeriodStart)
	s.Equal(date(2025, time.May, 14), april.PeriodEnd)
}

func (s *InvoiceGenerationServiceSuite) TestSettingsFromBillingPeriodStart() {
	jan1 := date(2025, time.January, 1)
	mar15 := date(2025, time.March, 15)
	l := s.createLease("lease_day15", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1, func(bs *lease.BillingSettings) {
		bs.BillingDay = 15
	})
	s.createSettings(l.ID, types.RentTimingAdvance, mar15, func(bs *lease.BillingSettings) {
		bs.BillingDay = 15
		bs.TaxApplicable = true
		bs.TaxRate = dec("0.10")
	})
	s.createCharge(l.ID, types.ChargeTypeRent, "1000", jan1, nil, func(c *charge.ChargeDefinition) {
		c.Taxable = true
	})

	feb, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-02"))
	s.Require().NoError(err)
	s.Equal(date(2025, time.February, 15), feb.PeriodStart)
	s.True(feb.TaxAmount.IsZero())

	mar, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
	s.Require().NoError(err)
	s.Equal(mar15, mar.PeriodStart)
	s.Equal(date(2025, time.April, 14), mar.PeriodEnd)
	s.Equal("100.00", mar.TaxAmount.StringFixed(2))
	s.Equal("1100.00", mar.TotalAmount.StringFixed(2))
}

func (s *InvoiceGenerationServiceSuite) TestLeaseStartingMidMonth() {
	mar10 := date(2025, time.March, 10)
	l := s.createLease("lease_mid", mar10, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, mar10, func(bs *lease.BillingSettings) {
		bs.ProrationMethod = types.ProrationMethodThirtyDayMonth
	})
	s.createCharge(l.ID, types.ChargeTypeRent, "3000", mar10, nil)

	inv, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
	s.Require().NoError(err)
	s.Equal(date(2025, time.March, 1), inv.PeriodStart)
	s.Equal("2200.00", inv.TotalAmount.StringFixed(2))
	s.Require().Len(inv.Lines, 1)
	s.Equal(mar10, inv.Lines[0].PeriodStart)
}

func (s *InvoiceGenerationServiceSuite) TestNothingToBill() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_empty", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1)

	_, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
	s.True(invoice.IsNothingToBill(err))
}

func (s *InvoiceGenerationServiceSuite) TestErrors() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_errors", jan1, nil)

	s.Run("missing settings", func() {
		_, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-03"))
		s.True(ierr.IsNotFound(err))
	})

	s.Run("lease of another org", func() {
		req := s.request(l.ID, "2025-03")
		req.OrgID = "org_other"
		_, err := s.service.GenerateInvoice(s.GetContext(), req)
		s.True(ierr.IsNotFound(err))
	})

	s.Run("unknown lease", func() {
		_, err := s.service.GenerateInvoice(s.GetContext(), s.request("lease_missing", "2025-03"))
		s.True(ierr.IsNotFound(err))
	})

	s.Run("rent with a weekly key", func() {
		_, err := s.service.GenerateInvoice(s.GetContext(), s.request(l.ID, "2025-W10"))
		s.True(ierr.IsValidation(err))
	})
}

func (s *InvoiceGenerationServiceSuite) TestUtilityInvoice() {
	jan1 := date(2025, time.January, 1)
	l := s.createLease("lease_utility", jan1, nil)
	s.createSettings(l.ID, types.RentTimingAdvance, jan1)
	s.createCharge(l.ID, types.ChargeTypeRent, "30000", jan1, nil)
	end := date(2025, time.March, 6)
	s.createCharge(l.ID, types.ChargeTypeUtility, "850", date(2025, time.February, 6), &end)

	req := s.request(l.ID, "2025-W10")
	req.RunType = types.InvoiceRunTypeUtility
	inv, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Require().Len(inv.Lines, 1)
	s.Equal(types.ChargeTypeUtility, inv.Lines[0].ChargeType)
	s.Equal("850.00", inv.TotalAmount.StringFixed(2))
	s.Equal(date(2025, time.March, 3), inv.PeriodStart)
}
