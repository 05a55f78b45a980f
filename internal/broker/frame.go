package broker

import "encoding/json"

// Event names carried on the websocket wire.
const (
	EventConnected        = "connected"
	EventJoinRoom         = "join-room"
	EventSignal           = "signal"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
)

// Frame is one outbound websocket message.
type Frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// SignalPayload is delivered to the addressed target. Sender is attached by
// the relay and is never taken from the client's frame.
type SignalPayload struct {
	Sender string          `json:"sender"`
	Signal json.RawMessage `json:"signal"`
}
