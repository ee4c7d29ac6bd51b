package hub

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sahana-1004/HCI-CIA-2/src/client"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// pipeConn is one end of an in-memory duplex connection standing in for
// the network between relay and client.
type pipeConn struct {
	in   chan []byte
	out  chan []byte
	done chan struct{}
	once *sync.Once
}

func newPipe() (server, clientEnd *pipeConn) {
	toClient := make(chan []byte, 64)
	toServer := make(chan []byte, 64)
	done := make(chan struct{})
	once := &sync.Once{}
	server = &pipeConn{in: toServer, out: toClient, done: done, once: once}
	clientEnd = &pipeConn{in: toClient, out: toServer, done: done, once: once}
	return server, clientEnd
}

func (p *pipeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-p.in:
		return data, nil
	case <-p.done:
		return nil, errors.New("connection closed")
	}
}

func (p *pipeConn) WriteMessage(data []byte) error {
	select {
	case p.out <- data:
		return nil
	case <-p.done:
		return errors.New("connection closed")
	}
}

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

type staticDialer struct {
	conn types.Conn
}

func (d staticDialer) Dial(string) (types.Conn, error) { return d.conn, nil }

// clientStack is one simulated dashboard client: transport, bus,
// projection, wired the way the UI wires them.
type clientStack struct {
	transport  *client.Transport
	bus        *client.Bus
	projection *client.Projection
}

func newClientStack(t *testing.T, h *Hub, identity string) *clientStack {
	t.Helper()
	serverEnd, clientEnd := newPipe()

	hc := NewClient(identity, serverEnd, h)
	h.Register(hc)
	go hc.WritePump()
	go hc.ReadPump()

	bus := client.NewBus(zerolog.Nop())
	projection := client.NewProjection()
	bus.Subscribe(projection.Apply)

	tr := client.NewTransport("ws://relay/ws", bus.Publish, zerolog.Nop(),
		client.WithDialer(staticDialer{conn: clientEnd}))
	require.NoError(t, tr.Connect())
	t.Cleanup(tr.Close)

	return &clientStack{transport: tr, bus: bus, projection: projection}
}

func TestEndToEndChatScenario(t *testing.T) {
	h := newTestHub(t)
	alice := newClientStack(t, h, "conn-alice")
	bob := newClientStack(t, h, "conn-bob")
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "both connected")

	sent := alice.transport.Send(types.Envelope{
		MessageType:    types.TypeChatMessage,
		ConversationID: "conv-1",
		SenderID:       "u1",
		Content:        "hi",
		ContentType:    "text",
	})
	require.True(t, sent)

	for name, stack := range map[string]*clientStack{"alice": alice, "bob": bob} {
		waitFor(t, func() bool { return len(stack.projection.Messages("conv-1")) == 1 }, name+" projection")
		msgs := stack.projection.Messages("conv-1")
		assert.Equal(t, "hi", msgs[0].Content, name)
		assert.Equal(t, "u1", msgs[0].SenderID, name)
		assert.NotEmpty(t, msgs[0].ID, name+": id resolved server-side")
		assert.False(t, msgs[0].Timestamp.IsZero(), name+": timestamp resolved server-side")
	}
}

func TestEndToEndUnreadAcrossClients(t *testing.T) {
	h := newTestHub(t)
	alice := newClientStack(t, h, "conn-alice")
	bob := newClientStack(t, h, "conn-bob")
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "both connected")

	bob.projection.SetActive("B")

	for i := 0; i < 3; i++ {
		require.True(t, alice.transport.Send(types.Envelope{
			MessageType: types.TypeChatMessage, ConversationID: "A", SenderID: "u1", Content: "to A",
		}))
	}
	require.True(t, alice.transport.Send(types.Envelope{
		MessageType: types.TypeChatMessage, ConversationID: "B", SenderID: "u1", Content: "to B",
	}))

	waitFor(t, func() bool { return len(bob.projection.Messages("A")) == 3 }, "bob sees A messages")
	waitFor(t, func() bool { return len(bob.projection.Messages("B")) == 1 }, "bob sees B message")

	assert.Equal(t, 3, bob.projection.UnreadCount("A"))
	assert.Equal(t, 0, bob.projection.UnreadCount("B"))

	bob.projection.SetActive("A")
	assert.Equal(t, 0, bob.projection.UnreadCount("A"))
}
