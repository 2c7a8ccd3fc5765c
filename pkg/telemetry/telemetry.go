// Package telemetry fans arm events out to dashboard clients over
// websockets using the channel-based hub pattern: one goroutine owns the
// client set, clients that cannot keep up are dropped rather than
// allowed to stall the feed.
package telemetry

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded event.
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG camera frames).
	BinaryMessage
)

// Message is one payload queued for broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
