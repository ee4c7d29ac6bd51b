package hub

import (
	"sync"
	"time"

	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// Client wraps one server-side WebSocket connection and manages its
// message flow.
type Client struct {
	ID          string
	conn        types.Conn
	hub         *Hub
	send        chan []byte
	connectedAt time.Time
	mu          sync.Mutex
	done        chan struct{}
	closed      bool
}

// NewClient creates a connection wrapper bound to the given hub.
func NewClient(id string, conn types.Conn, h *Hub) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		hub:         h,
		send:        make(chan []byte, 256),
		connectedAt: time.Now(),
		done:        make(chan struct{}),
	}
}

// Info returns metadata about this connection.
func (c *Client) Info() types.ClientInfo {
	return types.ClientInfo{ID: c.ID, ConnectedAt: c.connectedAt}
}

// ReadPump reads frames from the socket and forwards them to the hub.
// It runs until the socket closes, then unregisters the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.hub.inbound <- frame{origin: c.ID, data: data}
	}
}

// WritePump writes queued frames to the socket.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue queues a frame for delivery without blocking. It reports false
// when the connection is closed or its send buffer is full.
func (c *Client) enqueue(data []byte) bool {
	// The closed check and the send share one critical section so a
	// racing Close cannot strand a frame in the abandoned buffer after
	// it was counted as delivered. The send never blocks under mu.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close signals the client to stop its pumps. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}
