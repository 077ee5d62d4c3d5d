package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/leasebill/internal/clock"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/testutil"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type triggerCall struct {
	orgID   string
	key     types.PeriodKey
	runType types.InvoiceRunType
}

type fakeTrigger struct {
	mu    sync.Mutex
	calls []triggerCall
	errs  map[string]error
}

func (f *fakeTrigger) Trigger(_ context.Context, orgID string, key types.PeriodKey, runType types.InvoiceRunType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, triggerCall{orgID, key, runType})
	return f.errs[orgID]
}

type fakeSweeper struct {
	orgs []string
}

func (f *fakeSweeper) SweepOverdue(ctx context.Context, orgID string) (int, error) {
	if types.GetOrgID(ctx) != orgID {
		return 0, ierr.NewError("org missing from context").Mark(ierr.ErrSystem)
	}
	f.orgs = append(f.orgs, orgID)
	return 2, nil
}

func newTestScheduler(t *testing.T, trigger *fakeTrigger, sweeper *fakeSweeper, now time.Time) *Scheduler {
	t.Helper()
	ctx := context.Background()
	leases := testutil.NewInMemoryLeaseStore()
	for i, org := range []string{"org_b", "org_a", "org_b"} {
		l := &lease.Lease{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEASE),
			OrgID:       org,
			StartDate:   types.Date(2024, time.January, 1+i),
			LeaseStatus: types.LeaseStatusActive,
		}
		require.NoError(t, leases.Create(ctx, l.ID, l))
	}

	clk := clock.NewMock(t)
	clk.Set(now)
	return NewScheduler(config.GetDefaultConfig(), trigger, sweeper, leases, clk, logger.NewNoopLogger())
}

func TestRentPeriodKey(t *testing.T) {
	assert.Equal(t, types.PeriodKey("2025-03"), RentPeriodKey(time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.PeriodKey("2026-01"), RentPeriodKey(time.Date(2025, 12, 26, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.PeriodKey("2025-02"), RentPeriodKey(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
}

func TestUtilityPeriodKey(t *testing.T) {
	// Monday 2025-03-10 belongs to W11
	assert.Equal(t, types.PeriodKey("2025-W10"), UtilityPeriodKey(time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)))
	// Monday 2025-01-06 belongs to W02, the week before spans the year boundary
	assert.Equal(t, types.PeriodKey("2025-W01"), UtilityPeriodKey(time.Date(2025, 1, 6, 3, 0, 0, 0, time.UTC)))
}

func TestRunRentTriggersEveryOrg(t *testing.T) {
	trigger := &fakeTrigger{}
	s := newTestScheduler(t, trigger, &fakeSweeper{}, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))

	require.NoError(t, s.RunRent(context.Background()))
	assert.Equal(t, []triggerCall{
		{"org_a", "2025-03", types.InvoiceRunTypeRent},
		{"org_b", "2025-03", types.InvoiceRunTypeRent},
	}, trigger.calls)
}

func TestRunUtilityToleratesLeaseFailures(t *testing.T) {
	trigger := &fakeTrigger{errs: map[string]error{
		"org_a": ierr.NewError("1 lease failed").Mark(ierr.ErrPartialBatchFailure),
	}}
	s := newTestScheduler(t, trigger, &fakeSweeper{}, time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC))

	require.NoError(t, s.RunUtility(context.Background()))
	require.Len(t, trigger.calls, 2)
	assert.Equal(t, types.PeriodKey("2025-W10"), trigger.calls[0].key)
	assert.Equal(t, types.InvoiceRunTypeUtility, trigger.calls[1].runType)
}

func TestRunContinuesPastFailedOrg(t *testing.T) {
	trigger := &fakeTrigger{errs: map[string]error{
		"org_a": ierr.NewError("database down").Mark(ierr.ErrDatabase),
	}}
	s := newTestScheduler(t, trigger, &fakeSweeper{}, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))

	err := s.RunRent(context.Background())
	assert.True(t, ierr.IsPartialBatchFailure(err))
	assert.Len(t, trigger.calls, 2)
}

func TestRunOverdueSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := newTestScheduler(t, &fakeTrigger{}, sweeper, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))

	require.NoError(t, s.RunOverdueSweep(context.Background()))
	assert.Equal(t, []string{"org_a", "org_b"}, sweeper.orgs)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := newTestScheduler(t, &fakeTrigger{}, &fakeSweeper{}, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))
	s.config.RentSpec = "every tuesday"

	assert.True(t, ierr.IsValidation(s.Start()))
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(t, &fakeTrigger{}, &fakeSweeper{}, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestJobDurationFollowsClock(t *testing.T) {
	sched := newTestScheduler(t, &fakeTrigger{}, &fakeSweeper{}, time.Date(2025, 2, 26, 2, 0, 0, 0, time.UTC))
	core, logs := observer.New(zap.InfoLevel)
	sched.logger = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	clk := sched.clock.(*clock.Mock)

	sched.wrap("rent_run", func(ctx context.Context) error {
		clk.Advance(90 * time.Second)
		return nil
	})()

	completed := logs.FilterMessage("billing job completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, 90*time.Second, completed[0].ContextMap()["duration"])
}
