package pubsub

import (
	"context"
	"sync"
)

// Local is an in-process bus for single-instance deployments
type Local struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewLocal creates a new in-process bus
func NewLocal() *Local {
	return &Local{handlers: make(map[int]Handler)}
}

// Ensure Local implements the interface
var _ Bus = (*Local)(nil)

func (b *Local) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(event)
	}
	return nil
}

func (b *Local) Subscribe(ctx context.Context, handler Handler) error {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.handlers, id)
	b.mu.Unlock()
	return nil
}

func (b *Local) Close() error {
	return nil
}

// Subscribers returns the number of active subscriptions
func (b *Local) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
