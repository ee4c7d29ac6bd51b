// Package hub implements the server-side chat relay: it assigns each
// connection an identity, enriches inbound envelopes, and fans them out
// to every registered connection.
package hub

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/codec"
	"github.com/Sahana-1004/HCI-CIA-2/src/storage"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// MessageStore persists chat messages off the broadcast path. Defined
// here so the hub depends only on the operation it actually calls.
type MessageStore interface {
	CreateMessage(msg storage.InsertMessage) (storage.Message, error)
}

// ChatHistory keeps a capped recent-message log, typically in Redis.
type ChatHistory interface {
	AppendMessage(ctx context.Context, env types.Envelope) error
}

type frame struct {
	origin string
	data   []byte
}

// Hub orchestrates the relay: connect, enrich, broadcast, disconnect.
// All registry mutation happens on the Run loop, keeping the
// single-writer invariant without callers needing to know.
type Hub struct {
	registry *Registry

	register   chan *Client
	unregister chan *Client
	inbound    chan frame

	store   MessageStore
	history ChatHistory

	logger zerolog.Logger
	done   chan struct{}
}

// New creates a hub with an empty connection registry.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(logger),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan frame, 256),
		logger:     logger.With().Str("component", "hub").Logger(),
		done:       make(chan struct{}),
	}
}

// SetStore attaches the persistence collaborator. Chat messages are
// saved fire-and-forget; failures are logged and never affect delivery.
func (h *Hub) SetStore(s MessageStore) { h.store = s }

// SetHistory attaches an optional capped history log.
func (h *Hub) SetHistory(hist ChatHistory) { h.history = hist }

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case f := <-h.inbound:
			h.handleFrame(f)
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub event loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register queues a connection for registration.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister queues a connection for removal.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int { return h.registry.Count() }

// ConnectedClients returns the identities of all live connections.
func (h *Hub) ConnectedClients() []string { return h.registry.Identities() }

// ClientInfo returns info for a connected client, or nil.
func (h *Hub) ClientInfo(identity string) *types.ClientInfo {
	c, ok := h.registry.Get(identity)
	if !ok {
		return nil
	}
	info := c.Info()
	return &info
}

// addClient registers the connection and sends the welcome envelope to
// it alone, never broadcast.
func (h *Hub) addClient(c *Client) {
	h.registry.Register(c)
	h.logger.Info().Str("client_id", c.ID).Msg("client connected")

	welcome := types.Envelope{
		MessageType: types.TypeConnection,
		Status:      "connected",
		UserID:      c.ID,
		Timestamp:   codec.Now(),
	}
	if !h.registry.SendTo(c.ID, welcome) {
		h.logger.Warn().Str("client_id", c.ID).Msg("welcome delivery failed")
	}
}

func (h *Hub) removeClient(c *Client) {
	if !h.registry.Unregister(c.ID) {
		return
	}
	c.Close()
	h.logger.Info().Str("client_id", c.ID).Msg("client disconnected")
}

// handleFrame decodes, enriches, and broadcasts one inbound frame. A
// malformed frame is dropped; the connection that sent it stays open.
func (h *Hub) handleFrame(f frame) {
	env, err := codec.Decode(f.data)
	if err != nil {
		var derr *codec.DecodeError
		if errors.As(err, &derr) {
			h.logger.Warn().Err(err).Str("client_id", f.origin).Msg("dropping malformed frame")
		}
		return
	}

	enriched := codec.Enrich(env, f.origin)
	delivered := h.registry.Broadcast(enriched)
	h.logger.Debug().
		Str("message_type", enriched.MessageType).
		Str("message_id", enriched.ID).
		Int("delivered", delivered).
		Msg("broadcast")

	if enriched.MessageType == types.TypeChatMessage && (h.store != nil || h.history != nil) {
		go h.persist(enriched)
	}
}

// persist saves a chat message best-effort. It runs off the event loop
// so broadcast never waits on storage; failures are logged only.
func (h *Hub) persist(env types.Envelope) {
	if h.store != nil {
		h.saveMessage(env)
	}
	if h.history != nil {
		if err := h.history.AppendMessage(context.Background(), env); err != nil {
			h.logger.Error().Err(err).Str("message_id", env.ID).Msg("history append failed")
		}
	}
}

func (h *Hub) saveMessage(env types.Envelope) {
	conversationID, err := env.ConversationID.Int()
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", env.ID).Msg("unsaveable conversation id")
		return
	}
	senderID, err := env.SenderID.Int()
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", env.ID).Msg("unsaveable sender id")
		return
	}

	contentType := env.ContentType
	if contentType == "" {
		contentType = "text"
	}
	priority := env.Priority
	if priority == "" {
		priority = "normal"
	}

	_, err = h.store.CreateMessage(storage.InsertMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        env.Content,
		Type:           contentType,
		Attachment:     env.Attachment,
		Mentions:       env.Mentions,
		Priority:       priority,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", env.ID).Msg("message save failed")
	}
}
