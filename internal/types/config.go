package types

import (
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/samber/lo"
)

type RunMode string

const (
	// ModeLocal runs the scheduler and the event consumers in one process
	ModeLocal RunMode = "local"
	// ModeScheduler runs only the cron triggers
	ModeScheduler RunMode = "scheduler"
	// ModeConsumer runs only the event consumers
	ModeConsumer RunMode = "consumer"
)

func (m RunMode) Validate() error {
	allowed := []RunMode{ModeLocal, ModeScheduler, ModeConsumer}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid run mode").
			WithHint("Please provide a valid deployment mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
