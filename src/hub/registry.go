package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/codec"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// Registry holds the authoritative set of open connections, keyed by the
// server-assigned identity, and performs broadcast fan-out.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  zerolog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		logger:  logger.With().Str("component", "registry").Logger(),
	}
}

// Register inserts a connection, replacing any previous entry with the
// same identity.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	r.clients[c.ID] = c
	r.mu.Unlock()
}

// Unregister removes a connection. It is idempotent and reports whether
// an entry was actually removed.
func (r *Registry) Unregister(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[identity]; !ok {
		return false
	}
	delete(r.clients, identity)
	return true
}

// Get returns the connection registered under identity, if any.
func (r *Registry) Get(identity string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[identity]
	return c, ok
}

// Broadcast serializes the envelope once and delivers it to every
// registered connection, the sender included. A failed delivery evicts
// that recipient but never aborts delivery to the others. Returns the
// number of successful deliveries.
func (r *Registry) Broadcast(env types.Envelope) int {
	data := codec.Encode(env)

	// Snapshot under the read lock so a mid-broadcast eviction cannot
	// invalidate the iteration.
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(data) {
			delivered++
			continue
		}
		r.logger.Warn().Str("client_id", c.ID).Msg("delivery failed, evicting")
		r.Unregister(c.ID)
		c.Close()
	}
	return delivered
}

// SendTo delivers an envelope to a single connection only.
func (r *Registry) SendTo(identity string, env types.Envelope) bool {
	r.mu.RLock()
	c, ok := r.clients[identity]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return c.enqueue(codec.Encode(env))
}

// Identities returns the identities of all registered connections.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
