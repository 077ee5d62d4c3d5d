package invoice

import (
	"testing"

	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	allEvents := []Event{
		EventIssue, EventPartialPayment, EventFullPayment, EventPastDue,
		EventVoid, EventCancel, EventRefundPartial, EventRefundFull,
	}

	legal := map[types.InvoiceStatus]map[Event]types.InvoiceStatus{
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

	for from, allowed := range legal {
		for _, event := range allEvents {
			from, event := from, event
			t.Run(string(from)+"/"+string(event), func(t *testing.T) {
				to, err := Transition(from, event)
				want, ok := allowed[event]
				if !ok {
					require.Error(t, err)
					assert.True(t, ierr.IsBusinessRuleViolation(err))
					assert.Equal(t, from, to)
					assert.False(t, CanTransition(from, event))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, to)
				assert.True(t, CanTransition(from, event))
			})
		}
	}
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, s := range []types.InvoiceStatus{types.InvoiceStatusVoided, types.InvoiceStatusCancelled} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.IsPayable())
	}
}
