package events

import (
	"context"
	"sync"
)

// Handler receives a published lifecycle event.
type Handler func(ctx context.Context, topic string, payload []any)

// Bus is a synchronous in-process publish/subscribe emitter. Handlers run in
// subscription order on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wildcard []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Subscribe registers handler for a single topic, e.g. "user.created".
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// SubscribeAll registers handler for every topic.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

func (b *Bus) Emit(ctx context.Context, topic string, payload []any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[topic])+len(b.wildcard))
	handlers = append(handlers, b.handlers[topic]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, topic, payload)
	}
}
