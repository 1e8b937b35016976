// Package events is the in-process domain event bus. The lifecycle core
// publishes visibility changes; collaborators such as the listing cache
// subscribe. The core itself holds no cache state.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Event names published by the lifecycle services.
const (
	PropertyActivated   = "property.activated"
	PropertyDeactivated = "property.deactivated"
	ContractCancelled   = "contract.cancelled"
)

// Event is a domain fact that already happened; handlers must not assume
// they can veto it.
type Event struct {
	Name     string
	EntityID uuid.UUID
}

// Handler consumes a published event. Dispatch is synchronous; keep
// handlers cheap.
type Handler func(Event)

type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers handler for every event with the given name.
func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], handler)
}

// Publish dispatches the event to all subscribers of its name.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.subs[event.Name]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}
