package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/leasebill/internal/domain/events"
	"github.com/flexprice/leasebill/internal/publisher"
	"github.com/samber/lo"
)

// InMemoryEventPublisher records published events for assertions
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*events.DomainEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(_ context.Context, event *events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns all published events in publish order
func (p *InMemoryEventPublisher) Events() []*events.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*events.DomainEvent(nil), p.events...)
}

// EventNames returns the names of all published events in publish order
func (p *InMemoryEventPublisher) EventNames() []events.Name {
	return lo.Map(p.Events(), func(e *events.DomainEvent, _ int) events.Name {
		return e.EventName
	})
}

// Clear removes all published events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
