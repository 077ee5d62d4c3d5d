package service

import (
	"time"

	"github.com/flexprice/leasebill/internal/domain/charge"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/lease"
	"github.com/flexprice/leasebill/internal/idempotency"
	"github.com/flexprice/leasebill/internal/testutil"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// billingSuite wires services against the in-memory stores
type billingSuite struct {
	testutil.BaseServiceTestSuite
}

func (s *billingSuite) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Clock:            s.GetClock(),
		LeaseRepo:        stores.LeaseRepo,
		SettingsRepo:     stores.SettingsRepo,
		ChargeRepo:       stores.ChargeRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		SequenceRepo:     stores.SequenceRepo,
		InvoiceRunRepo:   stores.InvoiceRunRepo,
		PaymentRepo:      stores.PaymentRepo,
		ConfirmationRepo: stores.ConfirmationRepo,
		CreditNoteRepo:   stores.CreditNoteRepo,
		EventPublisher:   s.GetPublisher(),
		ProofLinks:       s.GetProofLinks(),
		Idempotency:      idempotency.NewGenerator(),
	}
}

func (s *billingSuite) createLease(id string, start time.Time, end *time.Time) *lease.Lease {
	l := &lease.Lease{
		ID:          id,
		OrgID:       testutil.DefaultOrgID,
		TenantName:  "Tenant " + id,
		UnitRef:     "unit-" + id,
		StartDate:   start,
		EndDate:     end,
		LeaseStatus: types.LeaseStatusActive,
		BaseModel:   types.GetDefaultBaseModel(s.GetContext(), s.GetNow()),
	}
	store := s.GetStores().LeaseRepo.(*testutil.InMemoryLeaseStore)
	s.Require().NoError(store.Create(s.GetContext(), l.ID, l))
	return l
}

func (s *billingSuite) createSettings(leaseID string, timing types.RentTiming, effectiveFrom time.Time, opts ...func(*lease.BillingSettings)) *lease.BillingSettings {
	settings := &lease.BillingSettings{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_SETTINGS),
		LeaseID:         leaseID,
		BillingDay:      1,
		RentTiming:      timing,
		ProrationMethod: types.ProrationMethodActualDaysInMonth,
		DueDays:         5,
		TaxRate:         decimal.Zero,
		EffectiveFrom:   effectiveFrom,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext(), s.GetNow()),
	}
	for _, opt := range opts {
		opt(settings)
	}
	s.Require().NoError(s.GetStores().SettingsRepo.Create(s.GetContext(), settings))
	return settings
}

func (s *billingSuite) createCharge(leaseID string, chargeType types.ChargeType, amount string, from time.Time, to *time.Time, opts ...func(*charge.ChargeDefinition)) *charge.ChargeDefinition {
	c := &charge.ChargeDefinition{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CHARGE),
		LeaseID:       leaseID,
		OrgID:         testutil.DefaultOrgID,
		ChargeType:    chargeType,
		Description:   string(chargeType),
		Amount:        decimal.RequireFromString(amount),
		EffectiveFrom: from,
		EffectiveTo:   to,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext(), s.GetNow()),
	}
	for _, opt := range opts {
		opt(c)
	}
	store := s.GetStores().ChargeRepo.(*testutil.InMemoryChargeStore)
	s.Require().NoError(store.Create(s.GetContext(), c.ID, c))
	return c
}

// createIssuedInvoice stores an issued invoice with a single rent line
func (s *billingSuite) createIssuedInvoice(leaseID string, total string) *invoice.Invoice {
	amount := decimal.RequireFromString(total)
	period := types.NewPeriod(types.Date(2025, time.January, 1), types.Date(2025, time.January, 31))
	inv, err := invoice.NewBuilder(testutil.DefaultOrgID, leaseID, "2025-01", types.InvoiceRunTypeRent, period).
		WithDueDays(5).
		AddLines(&invoice.InvoiceLine{
			ChargeType:  types.ChargeTypeRent,
			Description: "rent",
			Quantity:    decimal.NewFromInt(1),
			UnitAmount:  amount,
			Amount:      amount,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
		}).
		Build(s.GetContext(), s.GetNow())
	s.Require().NoError(err)

	s.Require().NoError(inv.Issue("INV-TEST-"+inv.ID, s.GetNow()))
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *billingSuite) reloadInvoice(id string) *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return inv
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func date(y int, m time.Month, d int) time.Time {
	return types.Date(y, m, d)
}
