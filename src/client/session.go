package client

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/codec"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// Session wires one transport, one bus, and one projection together:
// every envelope the transport receives reaches every bus listener, and
// the projection is itself a listener. Constructed explicitly and torn
// down with Close, there is no process-global connection state.
type Session struct {
	transport  *Transport
	bus        *Bus
	projection *Projection
	logger     zerolog.Logger

	mu       sync.Mutex
	identity string
}

// NewSession builds the client stack for the given relay URL.
func NewSession(url string, logger zerolog.Logger, opts ...TransportOption) *Session {
	s := &Session{
		bus:        NewBus(logger),
		projection: NewProjection(),
		logger:     logger.With().Str("component", "session").Logger(),
	}
	s.transport = NewTransport(url, s.bus.Publish, logger, opts...)
	s.bus.Subscribe(s.projection.Apply)
	s.bus.Subscribe(s.trackIdentity)
	return s
}

// Connect opens the relay connection.
func (s *Session) Connect() error { return s.transport.Connect() }

// Close shuts the session down and suppresses any pending reconnect.
func (s *Session) Close() { s.transport.Close() }

// Bus exposes the subscription bus for additional listeners.
func (s *Session) Bus() *Bus { return s.bus }

// Projection exposes the conversation view state.
func (s *Session) Projection() *Projection { return s.projection }

// Identity returns the server-assigned identity for this session, empty
// until the welcome envelope arrives.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SendChat sends a chat message and appends it to the projection
// optimistically. The envelope carries a client-generated id so the
// broadcast echo reconciles against the local copy instead of
// duplicating it. Returns false when the transport is not connected.
func (s *Session) SendChat(conversationID, senderID, content string, opts ...ChatOption) bool {
	env := types.Envelope{
		MessageType:    types.TypeChatMessage,
		ID:             uuid.NewString(),
		ConversationID: types.FlexID(conversationID),
		SenderID:       types.FlexID(senderID),
		Content:        content,
		ContentType:    "text",
		Timestamp:      codec.Now(),
	}
	for _, opt := range opts {
		opt(&env)
	}

	if !s.transport.Send(env) {
		return false
	}
	s.projection.AppendLocal(env)
	return true
}

// ChatOption customizes an outgoing chat envelope.
type ChatOption func(*types.Envelope)

// WithAttachment attaches a file or image to the message.
func WithAttachment(a *types.Attachment, contentType string) ChatOption {
	return func(env *types.Envelope) {
		env.Attachment = a
		if contentType != "" {
			env.ContentType = contentType
		}
	}
}

// WithMentions tags user handles in the message.
func WithMentions(handles ...string) ChatOption {
	return func(env *types.Envelope) { env.Mentions = handles }
}

// WithPriority marks the message "important" or "urgent".
func WithPriority(priority string) ChatOption {
	return func(env *types.Envelope) { env.Priority = priority }
}

func (s *Session) trackIdentity(env types.Envelope) {
	if env.MessageType == types.TypeConnection && env.UserID != "" {
		s.mu.Lock()
		s.identity = env.UserID
		s.mu.Unlock()
		s.logger.Info().Str("user_id", env.UserID).Msg("identity assigned")
	}
}
