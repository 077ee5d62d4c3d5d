package dto

import (
	"github.com/flexprice/leasebill/internal/domain/invoicerun"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/flexprice/leasebill/internal/validator"
)

// RunInvoicesRequest starts a batch run for one org and period
type RunInvoicesRequest struct {
	OrgID     string               `json:"org_id" validate:"required"`
	PeriodKey types.PeriodKey      `json:"period_key" validate:"required"`
	RunType   types.InvoiceRunType `json:"run_type" validate:"required"`
}

func (r *RunInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.PeriodKey.Validate(); err != nil {
		return err
	}
	if err := r.RunType.Validate(); err != nil {
		return err
	}
	if r.RunType == types.InvoiceRunTypeRent && !r.PeriodKey.IsMonthly() {
		return ierr.NewErrorf("rent runs need a monthly period key, got %s", r.PeriodKey).
			WithHint("Use a monthly period key such as 2025-03 for rent").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceRunResult summarises a finished run
type InvoiceRunResult struct {
	Run       *invoicerun.InvoiceRun `json:"run"`
	Succeeded int                    `json:"succeeded"`
	Skipped   int                    `json:"skipped"`
	Failed    int                    `json:"failed"`
}

func NewInvoiceRunResult(run *invoicerun.InvoiceRun) *InvoiceRunResult {
	return &InvoiceRunResult{
		Run:       run,
		Succeeded: run.Count(types.LeaseOutcomeSucceeded),
		Skipped:   run.Count(types.LeaseOutcomeSkipped),
		Failed:    run.Count(types.LeaseOutcomeFailed),
	}
}

// Err reports a partial batch failure when any lease failed. The run itself
// is complete and its outcomes are still valid.
func (r *InvoiceRunResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return ierr.NewErrorf("%d of %d leases failed", r.Failed, len(r.Run.Outcomes)).
		WithHint("Inspect the run outcomes and rerun the period once the failures are fixed").
		WithReportableDetails(map[string]any{
			"run_id":     r.Run.ID,
			"period_key": r.Run.PeriodKey,
			"run_type":   r.Run.RunType,
			"failed":     r.Failed,
		}).
		Mark(ierr.ErrPartialBatchFailure)
}
