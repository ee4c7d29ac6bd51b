// Package codec converts between wire bytes and message envelopes and
// fills required fields the sender left absent.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// DecodeError reports a malformed inbound frame. The frame is dropped;
// the connection that sent it stays open.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a raw text frame into an Envelope. It returns a
// *DecodeError when the payload is not valid JSON or has no messageType.
func Decode(raw []byte) (types.Envelope, error) {
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return types.Envelope{}, &DecodeError{Reason: "invalid json", Err: err}
	}
	if env.MessageType == "" {
		return types.Envelope{}, &DecodeError{Reason: "missing messageType"}
	}
	return env, nil
}

// Enrich fills id, timestamp, and senderId when absent. Values the
// sender supplied are never overwritten, so enrichment is idempotent.
func Enrich(env types.Envelope, fallbackSender string) types.Envelope {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.Timestamp == "" {
		env.Timestamp = Now()
	}
	if env.SenderID == "" {
		env.SenderID = types.FlexID(fallbackSender)
	}
	return env
}

// Encode serializes an envelope to its wire form. Envelope contains only
// marshalable fields, so encoding a well-formed envelope cannot fail.
func Encode(env types.Envelope) []byte {
	data, _ := json.Marshal(env)
	return data
}

// Now returns the current server time in the ISO-8601 form used on the wire.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
