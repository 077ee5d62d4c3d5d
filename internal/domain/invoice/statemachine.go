package invoice

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
)

// Event drives an invoice status transition
type Event string

const (
	EventIssue          Event = "issue"
	EventPartialPayment Event = "partial_payment"
	EventFullPayment    Event = "full_payment"
	EventPastDue        Event = "past_due"
	EventVoid           Event = "void"
	EventCancel         Event = "cancel"
	EventRefundPartial  Event = "refund_partial"
	EventRefundFull     Event = "refund_full"
)

// transitions is the complete table of legal moves. Anything absent is rejected.
var transitions = map[types.InvoiceStatus]map[Event]types.InvoiceStatus{
	types.InvoiceStatusDraft: {
		EventIssue:  types.InvoiceStatusIssued,
		EventVoid:   types.InvoiceStatusVoided,
		EventCancel: types.InvoiceStatusCancelled,
	},
	types.InvoiceStatusIssued: {
		EventPartialPayment: types.InvoiceStatusPartiallyPaid,
		EventFullPayment:    types.InvoiceStatusPaid,
		EventPastDue:        types.InvoiceStatusOverdue,
		EventVoid:           types.InvoiceStatusVoided,
		EventCancel:         types.InvoiceStatusCancelled,
	},
	types.InvoiceStatusPartiallyPaid: {
		EventPartialPayment: types.InvoiceStatusPartiallyPaid,
		EventFullPayment:    types.InvoiceStatusPaid,
		EventPastDue:        types.InvoiceStatusOverdue,
		EventCancel:         types.InvoiceStatusCancelled,
		EventRefundPartial:  types.InvoiceStatusPartiallyPaid,
		EventRefundFull:     types.InvoiceStatusIssued,
	},
	types.InvoiceStatusOverdue: {
		EventPartialPayment: types.InvoiceStatusOverdue,
		EventFullPayment:    types.InvoiceStatusPaid,
		EventCancel:         types.InvoiceStatusCancelled,
		EventRefundPartial:  types.InvoiceStatusOverdue,
		EventRefundFull:     types.InvoiceStatusOverdue,
	},
	types.InvoiceStatusPaid: {
		EventCancel:        types.InvoiceStatusCancelled,
		EventRefundPartial: types.InvoiceStatusPartiallyPaid,
		EventRefundFull:    types.InvoiceStatusIssued,
	},
	types.InvoiceStatusVoided:    {},
	types.InvoiceStatusCancelled: {},
}

// Transition returns the status reached from `from` on `event`, or a
// business rule violation when the move is not in the table.
func Transition(from types.InvoiceStatus, event Event) (types.InvoiceStatus, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return from, ierr.NewErrorf("cannot %s an invoice in status %s", event, from).
		WithHintf("Invoice is %s and does not allow %s", from, event).
		WithReportableDetails(map[string]any{
			"from":  from,
			"event": event,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// CanTransition reports whether the event is legal from the status
func CanTransition(from types.InvoiceStatus, event Event) bool {
	_, ok := transitions[from][event]
	return ok
}
