package scheduler

import (
	"context"
	"time"

	"github.com/flexprice/leasebill/internal/clock"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/domain/lease"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/service"
	"github.com/flexprice/leasebill/internal/types"
	"github.com/robfig/cron/v3"
)

// OverdueSweeper marks past-due invoices of one org
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, orgID string) (int, error)
}

// Scheduler turns calendar ticks into invoice runs and overdue sweeps.
// Every job is safe to repeat: runs are keyed by period and sweeps only
// move invoices that are still past due.
type Scheduler struct {
	cron    *cron.Cron
	trigger service.RunTrigger
	sweeper OverdueSweeper
	leases  lease.Repository
	clock   clock.Clock
	logger  *logger.Logger
	config  *config.SchedulerConfig
}

func NewScheduler(
	cfg *config.Configuration,
	trigger service.RunTrigger,
	sweeper OverdueSweeper,
	leases lease.Repository,
	clk clock.Clock,
	logger *logger.Logger,
) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		trigger: trigger,
		sweeper: sweeper,
		leases:  leases,
		clock:   clk,
		logger:  logger,
		config:  &cfg.Scheduler,
	}
}

// Start registers the configured jobs and starts ticking
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"rent_run", s.config.RentSpec, s.RunRent},
		{"utility_run", s.config.UtilitySpec, s.RunUtility},
		{"overdue_sweep", s.config.OverdueSpec, s.RunOverdueSweep},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid cron spec %q for %s", job.spec, job.name).
				Mark(ierr.ErrValidation)
		}
		s.logger.Infow("scheduled billing job", "job", job.name, "spec", job.spec)
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx := types.SetRequestID(context.Background(), types.GenerateUUID())
		start := s.clock.UtcNow()
		s.logger.Infow("billing job started", "job", name)

		if err := run(ctx); err != nil {
			s.logger.Errorw("billing job failed",
				"job", name,
				"error", err,
				"duration", s.clock.UtcNow().Sub(start),
			)
			return
		}
		s.logger.Infow("billing job completed", "job", name, "duration", s.clock.UtcNow().Sub(start))
	}
}

// RunRent bills next month's rent. The tick falls late in the month so
// advance invoices go out before the period starts.
func (s *Scheduler) RunRent(ctx context.Context) error {
	return s.runAll(ctx, RentPeriodKey(s.clock.UtcNow()), types.InvoiceRunTypeRent)
}

// RunUtility bills the ISO week that ended before now
func (s *Scheduler) RunUtility(ctx context.Context) error {
	return s.runAll(ctx, UtilityPeriodKey(s.clock.UtcNow()), types.InvoiceRunTypeUtility)
}

func (s *Scheduler) runAll(ctx context.Context, key types.PeriodKey, runType types.InvoiceRunType) error {
	orgIDs, err := s.leases.ListOrgIDs(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, orgID := range orgIDs {
		err := s.trigger.Trigger(ctx, orgID, key, runType)
		switch {
		case err == nil:
		case ierr.IsPartialBatchFailure(err):
			s.logger.Warnw("invoice run finished with failures",
				"org_id", orgID,
				"period_key", key,
				"run_type", runType,
				"error", err,
			)
		default:
			failed++
			s.logger.Errorw("invoice run failed",
				"org_id", orgID,
				"period_key", key,
				"run_type", runType,
				"error", err,
			)
		}
	}

	if failed > 0 {
		return ierr.NewErrorf("%d of %d org runs failed", failed, len(orgIDs)).
			WithReportableDetails(map[string]any{
				"period_key": key,
				"run_type":   runType,
			}).
			Mark(ierr.ErrPartialBatchFailure)
	}
	return nil
}

// RunOverdueSweep marks past-due invoices in every org
func (s *Scheduler) RunOverdueSweep(ctx context.Context) error {
	orgIDs, err := s.leases.ListOrgIDs(ctx)
	if err != nil {
		return err
	}

	var total, failed int
	for _, orgID := range orgIDs {
		marked, err := s.sweeper.SweepOverdue(types.SetOrgID(ctx, orgID), orgID)
		if err != nil {
			failed++
			s.logger.Errorw("overdue sweep failed", "org_id", orgID, "error", err)
			continue
		}
		total += marked
	}

	s.logger.Infow("overdue sweep finished", "orgs", len(orgIDs), "marked", total)
	if failed > 0 {
		return ierr.NewErrorf("overdue sweep failed for %d of %d orgs", failed, len(orgIDs)).
			Mark(ierr.ErrPartialBatchFailure)
	}
	return nil
}

// RentPeriodKey is the month after the one containing now
func RentPeriodKey(now time.Time) types.PeriodKey {
	y, m, _ := now.UTC().Date()
	return types.MonthlyPeriodKey(types.Date(y, m, 1).AddDate(0, 1, 0))
}

// UtilityPeriodKey is the ISO week before the one containing now
func UtilityPeriodKey(now time.Time) types.PeriodKey {
	return types.WeeklyPeriodKey(types.TruncateToDay(now).AddDate(0, 0, -7))
}
