// Package client provides the consumer side of the chat relay: a
// self-healing WebSocket transport, a subscription bus fanning inbound
// envelopes out to listeners, and a conversation projection folding the
// envelope stream into view state.
package client

import (
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/codec"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// DefaultReconnectDelay is the fixed wait before a reconnect attempt.
const DefaultReconnectDelay = 5 * time.Second

// Dialer opens one WebSocket session.
type Dialer interface {
	Dial(url string) (types.Conn, error)
}

type wsDialer struct {
	dialer *websocket.Dialer
}

func (d *wsDialer) Dial(url string) (types.Conn, error) {
	conn, _, err := d.dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts websocket.Conn to types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error { return c.conn.Close() }

// Transport maintains at most one connection to the relay and schedules
// exactly one reconnect attempt after any close. Inbound envelopes are
// handed to the registered handler in arrival order.
type Transport struct {
	url     string
	dialer  Dialer
	delay   time.Duration
	handler func(types.Envelope)
	logger  zerolog.Logger

	// schedule is time.AfterFunc unless a test substitutes a spy.
	schedule func(time.Duration, func()) *time.Timer

	mu         sync.Mutex
	conn       types.Conn
	connecting bool
	closed     bool
	retry      *time.Timer
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithDialer substitutes the WebSocket dialer.
func WithDialer(d Dialer) TransportOption {
	return func(t *Transport) { t.dialer = d }
}

// WithReconnectDelay sets the fixed reconnect delay.
func WithReconnectDelay(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.delay = d
		}
	}
}

// NewTransport creates a transport for the given relay URL. Envelopes
// received on the connection are passed to handler.
func NewTransport(url string, handler func(types.Envelope), logger zerolog.Logger, opts ...TransportOption) *Transport {
	t := &Transport{
		url:      url,
		dialer:   &wsDialer{dialer: websocket.DefaultDialer},
		delay:    DefaultReconnectDelay,
		handler:  handler,
		logger:   logger.With().Str("component", "transport").Logger(),
		schedule: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connect opens the connection unless one is already open or an attempt
// is in flight. A failed dial schedules a reconnect like any close.
func (t *Transport) Connect() error {
	t.mu.Lock()
	if t.closed || t.conn != nil || t.connecting {
		t.mu.Unlock()
		return nil
	}
	t.connecting = true
	t.mu.Unlock()

	conn, err := t.dialer.Dial(t.url)

	t.mu.Lock()
	t.connecting = false
	if err != nil {
		t.mu.Unlock()
		t.logger.Warn().Err(err).Str("url", t.url).Msg("connect failed")
		t.scheduleReconnect()
		return err
	}
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return nil
	}
	t.conn = conn
	// A successful open cancels any pending reconnect.
	if t.retry != nil {
		t.retry.Stop()
		t.retry = nil
	}
	t.mu.Unlock()

	t.logger.Info().Str("url", t.url).Msg("connected")
	go t.readLoop(conn)
	return nil
}

// Connected reports whether a connection is currently open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Send writes an envelope to the relay. It returns false, without
// blocking or queueing, when the connection is not open or the write
// fails; callers treat that as a signaled drop.
func (t *Transport) Send(env types.Envelope) bool {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		t.logger.Warn().Msg("send dropped, not connected")
		return false
	}
	if err := conn.WriteMessage(codec.Encode(env)); err != nil {
		t.logger.Warn().Err(err).Msg("send failed")
		return false
	}
	return true
}

// Close tears the transport down for good: it closes any open
// connection and cancels any pending reconnect so none fires later.
func (t *Transport) Close() {
	t.mu.Lock()
	t.closed = true
	if t.retry != nil {
		t.retry.Stop()
		t.retry = nil
	}
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// readLoop delivers inbound envelopes until the connection drops, then
// hands off to reconnect scheduling. Undecodable frames are logged and
// skipped; the connection is not torn down for one bad frame.
func (t *Transport) readLoop(conn types.Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		env, err := codec.Decode(data)
		if err != nil {
			t.logger.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if t.handler != nil {
			t.handler(env)
		}
	}

	conn.Close()
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	closed := t.closed
	t.mu.Unlock()

	if !closed {
		t.logger.Info().Dur("delay", t.delay).Msg("connection lost")
		t.scheduleReconnect()
	}
}

// scheduleReconnect arms the reconnect timer unless one is already
// pending or the transport was closed deliberately.
func (t *Transport) scheduleReconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.retry != nil {
		return
	}
	t.retry = t.schedule(t.delay, func() {
		t.mu.Lock()
		t.retry = nil
		t.mu.Unlock()
		if err := t.Connect(); err != nil {
			t.logger.Warn().Err(err).Msg("reconnect attempt failed")
		}
	})
}
