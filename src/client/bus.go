package client

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// Listener receives every envelope the transport delivers.
type Listener func(types.Envelope)

type subscription struct {
	id uint64
	fn Listener
}

// Bus fans every inbound envelope out to all registered listeners.
// Delivery is synchronous in registration order; there is no buffering
// or replay, so a listener never sees envelopes from before it joined.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
	logger zerolog.Logger
}

// NewBus creates an empty subscription bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger.With().Str("component", "bus").Logger()}
}

// Subscribe registers a listener and returns its cancel function.
// Cancelling removes exactly this registration, even if the same
// function value was subscribed more than once.
func (b *Bus) Subscribe(fn Listener) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers env to every registered listener. A panicking
// listener is logged and does not stop delivery to the rest.
func (b *Bus) Publish(env types.Envelope) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, env)
	}
}

func (b *Bus) deliver(sub subscription, env types.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("listener panicked")
		}
	}()
	sub.fn(env)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
