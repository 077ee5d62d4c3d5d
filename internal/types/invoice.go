package types

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusVoided        InvoiceStatus = "voided"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusIssued,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusVoided,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further transition is possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusVoided || s == InvoiceStatusCancelled
}

// IsPayable reports whether payments can be applied in this status
func (s InvoiceStatus) IsPayable() bool {
	return lo.Contains(PayableInvoiceStatuses, s)
}

// PayableInvoiceStatuses accept payments and confirmation requests
var PayableInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusOverdue,
}

// InvoiceRunType selects which resolvers an invoice run executes
type InvoiceRunType string

const (
	InvoiceRunTypeRent    InvoiceRunType = "rent"
	InvoiceRunTypeUtility InvoiceRunType = "utility"
)

func (t InvoiceRunType) String() string {
	return string(t)
}

func (t InvoiceRunType) Validate() error {
	allowed := []InvoiceRunType{
		InvoiceRunTypeRent,
		InvoiceRunTypeUtility,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice run type").
			WithHint("Run type must be rent or utility").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceRunStatus is the state of a batch run
type InvoiceRunStatus string

const (
	InvoiceRunStatusRunning               InvoiceRunStatus = "running"
	InvoiceRunStatusCompleted             InvoiceRunStatus = "completed"
	InvoiceRunStatusCompletedWithFailures InvoiceRunStatus = "completed_with_failures"
)

// LeaseOutcomeStatus is the per-lease result inside a run
type LeaseOutcomeStatus string

const (
	LeaseOutcomeSucceeded LeaseOutcomeStatus = "succeeded"
	LeaseOutcomeSkipped   LeaseOutcomeStatus = "skipped"
	LeaseOutcomeFailed    LeaseOutcomeStatus = "failed"
)
