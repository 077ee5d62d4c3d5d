package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/flexprice/leasebill/internal/api/dto"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/domain/invoice"
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// RunTrigger is what the scheduler calls on its calendar ticks
type RunTrigger interface {
	Trigger(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) error
}

// InvoiceRunService generates the invoices of one org for one period
type InvoiceRunService interface {
	RunTrigger
	// RunMonthlyInvoices processes every billable lease. Lease failures are
	// recorded in the run and never abort the batch; use the result's Err
	// to detect them.
	RunMonthlyInvoices(ctx context.Context, req *dto.RunInvoicesRequest) (*dto.InvoiceRunResult, error)
	GetRun(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) (*invoicerun.InvoiceRun, error)
}

type invoiceRunService struct {
	ServiceParams
	generator InvoiceGenerationService
	invoices  InvoiceService
}

func NewInvoiceRunService(params ServiceParams) InvoiceRunService {
	return &invoiceRunService{
		ServiceParams: params,
		generator:     NewInvoiceGenerationService(params),
		invoices:      NewInvoiceService(params),
	}
}

func (s *invoiceRunService) Trigger(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) error {
	result, err := s.RunMonthlyInvoices(ctx, &dto.RunInvoicesRequest{
		OrgID:     orgID,
		PeriodKey: periodKey,
		RunType:   runType,
	})
	if err != nil {
		return err
	}
	return result.Err()
}

func (s *invoiceRunService) RunMonthlyInvoices(ctx context.Context, req *dto.RunInvoicesRequest) (*dto.InvoiceRunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = types.SetOrgID(ctx, req.OrgID)

	now := s.Clock.UtcNow()
	run, err := s.InvoiceRunRepo.Begin(ctx, &invoicerun.InvoiceRun{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_RUN),
		OrgID:     req.OrgID,
		PeriodKey: req.PeriodKey,
		RunType:   req.RunType,
		RunStatus: types.InvoiceRunStatusRunning,
		StartedAt: now,
		Attempts:  1,
		BaseModel: types.GetDefaultBaseModel(ctx, now),
	})
	if err != nil {
		return nil, err
	}

	window, err := s.leaseWindow(req.PeriodKey, req.RunType)
	if err != nil {
		return nil, err
	}
	leases, err := s.LeaseRepo.ListBillable(ctx, req.OrgID, window)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("starting invoice run",
		"run_id", run.ID,
		"org_id", req.OrgID,
		"period_key", req.PeriodKey,
		"run_type", req.RunType,
		"attempt", run.Attempts,
		"leases", len(leases),
	)

	p := pool.NewWithResults[invoicerun.LeaseOutcome]().
		WithMaxGoroutines(max(s.Config.Billing.WorkerPoolSize, 1))
	for _, l := range leases {
		p.Go(func() invoicerun.LeaseOutcome {
			return s.processLease(ctx, req, l)
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].LeaseID < outcomes[j].LeaseID
	})

	run.Complete(outcomes, s.Clock.UtcNow())
	run.Touch(ctx, s.Clock.UtcNow())
	if err := s.InvoiceRunRepo.Complete(ctx, run); err != nil {
		return nil, err
	}

	result := dto.NewInvoiceRunResult(run)
	s.Logger.Infow("invoice run completed",
		"run_id", run.ID,
		"run_status", run.RunStatus,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	s.publishEvent(ctx, events.InvoiceRunCompleted, run.OrgID, run.ID, result)
	return result, nil
}

// leaseWindow covers every day a lease could be billed for in the run.
// Rent reaches back a month for arrears and forward past month end for
// late billing days; utility only looks at the run window.
func (s *invoiceRunService) leaseWindow(key types.PeriodKey, runType types.InvoiceRunType) (types.Period, error) {
	window, err := key.Window()
	if err != nil {
		return types.Period{}, err
	}
	if runType != types.InvoiceRunTypeRent {
		return window, nil
	}
	return types.Period{
		Start: window.Start.AddDate(0, -1, 0),
		End:   window.End.AddDate(0, 1, 0),
	}, nil
}

// processLease never returns an error: every way a lease can end is an outcome
func (s *invoiceRunService) processLease(ctx context.Context, req *dto.RunInvoicesRequest, l *lease.Lease) (outcome invoicerun.LeaseOutcome) {
	outcome = invoicerun.LeaseOutcome{LeaseID: l.ID}
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Errorw("panic while invoicing lease",
				"lease_id", l.ID,
				"period_key", req.PeriodKey,
				"panic", r,
			)
			outcome.Outcome = types.LeaseOutcomeFailed
			outcome.Reason = fmt.Sprintf("panic: %v", r)
		}
	}()

	key := s.Idempotency.LeaseInvoiceKey(req.OrgID, req.PeriodKey.String(), req.RunType.String(), l.ID)

	existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, key)
	if err == nil {
		return skipped(outcome, existing.ID, "already invoiced")
	}
	if !ierr.IsNotFound(err) {
		return s.failed(outcome, req, err)
	}

	inv, err := s.generator.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		OrgID:          req.OrgID,
		LeaseID:        l.ID,
		PeriodKey:      req.PeriodKey,
		RunType:        req.RunType,
		IdempotencyKey: key,
	})
	if invoice.IsNothingToBill(err) {
		return skipped(outcome, "", "nothing to bill")
	}
	if err != nil {
		return s.failed(outcome, req, err)
	}

	if err := s.invoices.CreateInvoice(ctx, inv); err != nil {
		if ierr.IsAlreadyExists(err) {
			return skipped(outcome, "", "already invoiced")
		}
		return s.failed(outcome, req, err)
	}
	outcome.InvoiceID = inv.ID

	if s.Config.Billing.AutoIssueOnRun {
		if _, err := s.invoices.IssueInvoice(ctx, inv.ID); err != nil {
			// the draft stays and a rerun skips it, so it must be issued by hand
			return s.failed(outcome, req, ierr.WithError(err).
				WithMessage("invoice created but not issued").
				Mark(ierr.ErrSystem))
		}
	}

	outcome.Outcome = types.LeaseOutcomeSucceeded
	return outcome
}

func skipped(outcome invoicerun.LeaseOutcome, invoiceID, reason string) invoicerun.LeaseOutcome {
	outcome.Outcome = types.LeaseOutcomeSkipped
	outcome.InvoiceID = invoiceID
	outcome.Reason = reason
	return outcome
}

func (s *invoiceRunService) failed(outcome invoicerun.LeaseOutcome, req *dto.RunInvoicesRequest, err error) invoicerun.LeaseOutcome {
	s.Logger.Errorw("failed to invoice lease",
		"lease_id", outcome.LeaseID,
		"period_key", req.PeriodKey,
		"run_type", req.RunType,
		"error", err,
	)
	detail := ierr.NewErrorDetail(err)
	outcome.Outcome = types.LeaseOutcomeFailed
	outcome.Reason = err.Error()
	outcome.Error = &detail
	return outcome
}

func (s *invoiceRunService) GetRun(ctx context.Context, orgID string, periodKey types.PeriodKey, runType types.InvoiceRunType) (*invoicerun.InvoiceRun, error) {
	return s.InvoiceRunRepo.GetByKey(ctx, orgID, periodKey, runType)
}
