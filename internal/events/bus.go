// Package events is a small in-process publish/subscribe bus. Services
// publish after their transaction commits; handlers run on their own
// goroutines and must be idempotent.
package events

import (
	"context"
	"sync"

	"firedues/internal/logger"
)

// Event is anything with a routing name.
type Event interface {
	Name() string
}

// Handler reacts to a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher is the side of the bus that services depend on.
type Publisher interface {
	Publish(e Event)
}

// Bus fans events out to subscribed handlers.
type Bus struct {
	ctx      context.Context
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a bus whose handlers run under ctx. Cancelling ctx stops
// in-flight handlers at their next blocking call.
func NewBus(ctx context.Context) *Bus {
	return &Bus{ctx: ctx, handlers: make(map[string][]Handler)}
}

// Subscribe registers h for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish dispatches e to every subscriber asynchronously. Handler errors are
// logged, never returned.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[e.Name()]...)
	b.mu.RUnlock()

	for _, h := range hs {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			if err := h(b.ctx, e); err != nil {
				if b.ctx.Err() != nil {
					return
				}
				logger.Get().Errorw("Event handler failed", "event", e.Name(), "error", err)
			}
		}(h)
	}
}

// Wait blocks until all dispatched handlers have returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// PersonCreatedEvent is the routing name of PersonCreated.
const PersonCreatedEvent = "person.created"

// PersonCreated is published after a person row commits.
type PersonCreated struct {
	PersonID uint
}

// Name implements Event.
func (PersonCreated) Name() string { return PersonCreatedEvent }
