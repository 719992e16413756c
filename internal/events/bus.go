// Package events is a small synchronous publish/subscribe bus used to report
// what happened to the store without coupling callers to the logger.
package events

import (
	"sync"
	"time"
)

// Type identifies what happened.
type Type string

const (
	EntryStored     Type = "entry_stored"
	EntriesListed   Type = "entries_listed"
	SearchPerformed Type = "search_performed"
	RequestFailed   Type = "request_failed"
)

// Event carries one occurrence. Source names the surface that caused it
// ("web" or "cli").
type Event struct {
	Type      Type
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

type Handler func(Event)

// Bus manages event publication and subscription. Handlers run in the
// publishing goroutine, in subscription order.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[Type][]Handler
	allHandlers []Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, h)
}

// Publish sends an event to all registered handlers. A nil Bus drops it.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	for _, h := range b.handlers[e.Type] {
		h(e)
	}
	for _, h := range b.allHandlers {
		h(e)
	}
}

// Emit publishes an event built from its parts.
func (b *Bus) Emit(t Type, source string, data map[string]any) {
	b.Publish(Event{
		Type:   t,
		Source: source,
		Data:   data,
	})
}
