package publisher

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/leasebill/internal/config"
	"github.com/flexprice/leasebill/internal/domain/events"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
	"github.com/flexprice/leasebill/internal/pubsub"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	MetadataEventName = "event_name"
	MetadataOrgID     = "org_id"
	MetadataEntityID  = "entity_id"
)

// EventPublisher publishes billing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *events.DomainEvent) error
}

type eventPublisher struct {
	pubSub pubsub.Publisher
	logger *logger.Logger
	config *config.EventConfig
}

// NewEventPublisher creates a publisher writing to the configured topic
func NewEventPublisher(cfg *config.Configuration, logger *logger.Logger, pubSub pubsub.PubSub) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		logger: logger,
		config: &cfg.Event,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}

	p.logger.Debugw("publishing event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"topic", p.config.Topic,
		"destination", p.config.PublishDestination,
	)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to publish %s event", event.EventName).
			WithReportableDetails(map[string]any{
				"event_id":   event.ID,
				"event_name": event.EventName,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

// NewMessage encodes an event as a watermill message keyed by the event ID
func NewMessage(event *events.DomainEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode event").
			WithReportableDetails(map[string]any{"event_name": event.EventName}).
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(MetadataEventName, string(event.EventName))
	msg.Metadata.Set(MetadataOrgID, event.OrgID)
	msg.Metadata.Set(MetadataEntityID, event.EntityID)
	return msg, nil
}

// DecodeMessage reverses NewMessage. The payload is left as generic JSON.
func DecodeMessage(msg *message.Message) (*events.DomainEvent, error) {
	var event events.DomainEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed event payload").
			WithReportableDetails(map[string]any{"message_uuid": msg.UUID}).
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}
