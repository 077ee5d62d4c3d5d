package invoicerun

import (
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	now := time.Date(2025, time.March, 26, 2, 0, 0, 0, time.UTC)

	run := &InvoiceRun{RunStatus: types.InvoiceRunStatusRunning}
	run.Complete([]LeaseOutcome{
		{LeaseID: "a", Outcome: types.LeaseOutcomeSucceeded},
		{LeaseID: "b", Outcome: types.LeaseOutcomeSkipped},
	}, now)
	assert.Equal(t, types.InvoiceRunStatusCompleted, run.RunStatus)
	assert.Equal(t, now, *run.CompletedAt)

	run.Complete([]LeaseOutcome{
		{LeaseID: "a", Outcome: types.LeaseOutcomeSucceeded},
		{LeaseID: "b", Outcome: types.LeaseOutcomeFailed, Reason: "boom"},
	}, now)
	assert.Equal(t, types.InvoiceRunStatusCompletedWithFailures, run.RunStatus)
	assert.Equal(t, 1, run.Count(types.LeaseOutcomeFailed))
	assert.Equal(t, 1, run.Count(types.LeaseOutcomeSucceeded))
}
