package service

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/pubsub"
	"github.com/flexprice/leasebill/internal/pubsub/router"
	"github.com/flexprice/leasebill/internal/publisher"
)

const processedEventTTL = 24 * time.Hour

// Notifier delivers a domain event to people. Billing ships only the
// logging notifier; email and SMS senders plug in here.
type Notifier interface {
	Notify(ctx context.Context, event *events.DomainEvent) error
}

type logNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier writes every event to the log
func NewLogNotifier(logger *logger.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, event *events.DomainEvent) error {
	n.logger.Infow("billing notification",
		"event_name", event.EventName,
		"event_id", event.ID,
		"org_id", event.OrgID,
		"entity_id", event.EntityID,
	)
	return nil
}

// NotificationService consumes billing events and hands them to notifiers.
// Redelivered events are dropped by ID, and each notifier sees an event at
// most once while the processed marker lives.
type NotificationService interface {
	RegisterHandler(r *router.Router, subscriber pubsub.Subscriber)
	HandleMessage(msg *message.Message) error
}

type notificationService struct {
	ServiceParams
	cache     cache.Cache
	notifiers []Notifier
}

func NewNotificationService(params ServiceParams, c cache.Cache) NotificationService {
	return &notificationService{
		ServiceParams: params,
		cache:         c,
		notifiers:     []Notifier{NewLogNotifier(params.Logger)},
	}
}

// NewNotificationServiceWithNotifiers replaces the default log notifier
func NewNotificationServiceWithNotifiers(params ServiceParams, c cache.Cache, notifiers ...Notifier) NotificationService {
	return &notificationService{
		ServiceParams: params,
		cache:         c,
		notifiers:     notifiers,
	}
}

func (s *notificationService) RegisterHandler(r *router.Router, subscriber pubsub.Subscriber) {
	r.AddNoPublishHandler(
		"billing_notifications",
		s.Config.Event.Topic,
		subscriber,
		s.HandleMessage,
	)
	s.Logger.Infow("registered notification handler",
		"topic", s.Config.Event.Topic,
	)
}

func (s *notificationService) HandleMessage(msg *message.Message) error {
	ctx := msg.Context()

	event, err := publisher.DecodeMessage(msg)
	if err != nil {
		return err
	}

	key := cache.GenerateKey(cache.PrefixProcessedEvent, event.ID)
	if _, seen := s.cache.Get(ctx, key); seen {
		s.Logger.Debugw("skipping duplicate event",
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	// a retry after a failed notifier only reaches the notifiers that have
	// not seen the event yet
	for i, n := range s.notifiers {
		deliveredKey := cache.GenerateKey(cache.PrefixProcessedEvent, event.ID, i)
		if _, done := s.cache.Get(ctx, deliveredKey); done {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			s.Logger.Warnw("notifier failed",
				"event_id", event.ID,
				"event_name", event.EventName,
				"notifier", i,
				"error", err,
			)
			return err
		}
		s.cache.Set(ctx, deliveredKey, true, processedEventTTL)
	}
	s.cache.Set(ctx, key, true, processedEventTTL)
	return nil
}
