package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// Message type discriminators carried in Envelope.MessageType.
const (
	TypeConnection  = "connection"
	TypeChatMessage = "chat_message"
)

// Envelope is one message unit exchanged over the chat WebSocket.
// Fields the sender omits (id, senderId, timestamp) are filled in
// server-side before broadcast; caller-supplied values are preserved.
type Envelope struct {
	MessageType    string      `json:"messageType"`
	ID             string      `json:"id,omitempty"`
	Status         string      `json:"status,omitempty"`
	UserID         string      `json:"userId,omitempty"`
	ConversationID FlexID      `json:"conversationId,omitempty"`
	SenderID       FlexID      `json:"senderId,omitempty"`
	Content        string      `json:"content,omitempty"`
	ContentType    string      `json:"contentType,omitempty"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	Mentions       []string    `json:"mentions,omitempty"`
	Priority       string      `json:"priority,omitempty"`
	Timestamp      string      `json:"timestamp,omitempty"`
}

// FlexID is an identifier that tolerates both JSON forms clients send:
// `"conversationId": 1` and `"conversationId": "1"` decode to the same
// value. A numeric id marshals back as a bare number.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	s := string(f)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Int converts the id to its numeric form.
func (f FlexID) Int() (int, error) {
	return strconv.Atoi(string(f))
}

// Attachment describes a file or image carried with a chat message.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
	URL  string `json:"url"`
}

// ClientInfo holds metadata about a connected WebSocket client.
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Conn abstracts one side of a WebSocket session for testability.
// Implementations wrap a real socket on either the server or client end.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}
