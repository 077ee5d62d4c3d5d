package invoicerun

import (
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/samber/lo"
)

// InvoiceRun records one batch execution for (org, period, run type).
// Retries reuse the same row and bump Attempts.
type InvoiceRun struct {
	ID          string                 `db:"id" json:"id"`
	OrgID       string                 `db:"org_id" json:"org_id"`
	PeriodKey   types.PeriodKey        `db:"period_key" json:"period_key"`
	RunType     types.InvoiceRunType   `db:"run_type" json:"run_type"`
	RunStatus   types.InvoiceRunStatus `db:"run_status" json:"run_status"`
	StartedAt   time.Time              `db:"started_at" json:"started_at"`
	CompletedAt *time.Time             `db:"completed_at" json:"completed_at,omitempty"`
	Outcomes    []LeaseOutcome         `db:"-" json:"outcomes"`
	Attempts    int                    `db:"attempts" json:"attempts"`

	types.BaseModel
}

// LeaseOutcome is what happened to one lease in a run
type LeaseOutcome struct {
	LeaseID   string                   `json:"lease_id"`
	Outcome   types.LeaseOutcomeStatus `json:"outcome"`
	InvoiceID string                   `json:"invoice_id,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
	Error     *ierr.ErrorDetail        `json:"error,omitempty"`
}

// Count returns the number of outcomes with the given status
func (r *InvoiceRun) Count(status types.LeaseOutcomeStatus) int {
	return lo.CountBy(r.Outcomes, func(o LeaseOutcome) bool {
		return o.Outcome == status
	})
}

// Complete stores the outcomes and derives the final status
func (r *InvoiceRun) Complete(outcomes []LeaseOutcome, now time.Time) {
	r.Outcomes = outcomes
	r.CompletedAt = &now
	r.RunStatus = types.InvoiceRunStatusCompleted
	if r.Count(types.LeaseOutcomeFailed) > 0 {
		r.RunStatus = types.InvoiceRunStatusCompletedWithFailures
	}
}
