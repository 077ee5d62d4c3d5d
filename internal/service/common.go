package service

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/leasebill/internal/domain/events"
	ierr "github.com/flexprice/leasebill/internal/errors"
)

// publishEvent emits a domain event after the state change has committed.
// Delivery failures are logged and never undo the change.
func (p ServiceParams) publishEvent(ctx context.Context, name events.Name, orgID, entityID string, payload any) {
	if p.EventPublisher == nil {
		return
	}
	event := events.NewDomainEvent(ctx, name, orgID, entityID, p.Clock.UtcNow(), payload)
	if err := p.EventPublisher.Publish(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish event",
			"event_name", name,
			"event_id", event.ID,
			"entity_id", entityID,
			"error", err,
		)
	}
}

// retryOnConflict reruns op after a version conflict, reloading state each
// time. Any other error stops immediately. Once the attempts are spent the
// last conflict is returned.
func (p ServiceParams) retryOnConflict(ctx context.Context, opName string, op func(ctx context.Context) error) error {
	cfg := p.Config.Billing
	b := backoff.NewExponentialBackOff()
	if cfg.RetryInitialInterval > 0 {
		b.InitialInterval = cfg.RetryInitialInterval
	}
	if cfg.RetryMaxInterval > 0 {
		b.MaxInterval = cfg.RetryMaxInterval
	}
	b.MaxElapsedTime = 0

	attempts := max(cfg.MaxConflictRetries, 1)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !ierr.IsVersionConflict(err) {
			return backoff.Permanent(err)
		}
		p.Logger.Debugw("version conflict, retrying",
			"operation", opName,
			"attempt", attempt,
			"max_attempts", attempts,
		)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}
