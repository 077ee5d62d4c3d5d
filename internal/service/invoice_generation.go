package service

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceGenerationService prices a lease for a period and returns a draft
type InvoiceGenerationService interface {
	// GenerateInvoice builds but does not persist the draft. It returns
	// invoice.ErrNothingToBill when the lease owes nothing for the period.
	GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*invoice.Invoice, error)
}

type invoiceGenerationService struct {
	ServiceParams
}

func NewInvoiceGenerationService(params ServiceParams) InvoiceGenerationService {
	return &invoiceGenerationService{
		ServiceParams: params,
	}
}

func (s *invoiceGenerationService) GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*invoice.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.LeaseRepo.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if l.OrgID != req.OrgID {
		return nil, ierr.NewError("lease not found").
			WithHintf("Lease %s does not belong to the organization", req.LeaseID).
			Mark(ierr.ErrNotFound)
	}

	resolvers := ResolversFor(req.RunType)
	in, period, err := s.resolveSettings(ctx, l, req.PeriodKey, resolvers[0])
	if err != nil {
		return nil, err
	}
	settings := in.Settings

	in.Charges, err = s.ChargeRepo.ListActive(ctx, l.ID, period)
	if err != nil {
		return nil, err
	}

	lines := make([]*invoice.InvoiceLine, 0, len(in.Charges))
	for _, r := range resolvers {
		resolved, err := r.Resolve(in)
		if err != nil {
			return nil, err
		}
		lines = append(lines, resolved...)
	}

	inv, err := invoice.NewBuilder(req.OrgID, l.ID, req.PeriodKey, req.RunType, period).
		WithTax(s.taxRate(settings)).
		WithDueDays(s.dueDays(settings)).
		WithIdempotencyKey(req.IdempotencyKey).
		AddLines(lines...).
		Build(ctx, s.Clock.UtcNow())
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("generated draft invoice",
		"lease_id", l.ID,
		"period_key", req.PeriodKey,
		"run_type", req.RunType,
		"period", period.String(),
		"lines", len(inv.Lines),
		"total", inv.TotalAmount.String(),
	)
	return inv, nil
}

// resolveSettings picks the settings version in force on the first billed
// day of the service period. The period depends on the settings, so a
// version found at the key's window is used to locate the period and the
// lookup is repeated as of the period start. Every resolver of a run type
// bills the same period.
func (s *invoiceGenerationService) resolveSettings(ctx context.Context, l *lease.Lease, key types.PeriodKey, r ChargeResolver) (ResolveInput, types.Period, error) {
	in := ResolveInput{
		Lease:     l,
		PeriodKey: key,
	}

	window, err := key.Window()
	if err != nil {
		return in, types.Period{}, err
	}
	in.Settings, err = s.SettingsRepo.GetAsOf(ctx, l.ID, billedFrom(window.Start, l))
	if err != nil {
		return in, types.Period{}, err
	}
	period, err := r.Period(in)
	if err != nil {
		return in, types.Period{}, err
	}

	current, err := s.SettingsRepo.GetAsOf(ctx, l.ID, billedFrom(period.Start, l))
	if err != nil {
		// arrears periods can start before the first version
		if ierr.IsNotFound(err) {
			return in, period, nil
		}
		return in, types.Period{}, err
	}
	if current.ID == in.Settings.ID {
		return in, period, nil
	}

	in.Settings = current
	period, err = r.Period(in)
	if err != nil {
		return in, types.Period{}, err
	}
	return in, period, nil
}

// billedFrom is the later of day and the lease start
func billedFrom(day time.Time, l *lease.Lease) time.Time {
	start := types.TruncateToDay(l.StartDate)
	if start.After(day) {
		return start
	}
	return day
}

func (s *invoiceGenerationService) taxRate(settings *lease.BillingSettings) decimal.Decimal {
	if !settings.TaxApplicable {
		return decimal.Zero
	}
	if settings.TaxRate.IsPositive() {
		return settings.TaxRate
	}
	return s.Config.Billing.DefaultTaxRate
}

func (s *invoiceGenerationService) dueDays(settings *lease.BillingSettings) int {
	if settings.DueDays > 0 {
		return settings.DueDays
	}
	return s.Config.Billing.DefaultDueDays
}
