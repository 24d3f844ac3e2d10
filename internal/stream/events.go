package stream

import "time"

// EventType tags connection level events.
type EventType string

const (
	// EventConnecting is emitted before every dial.
	EventConnecting EventType = "connecting"
	// EventOpened is emitted once the handshake succeeded.
	EventOpened EventType = "opened"
	// EventReady is emitted for the ready sentinel frame.
	EventReady EventType = "ready"
	// EventMessage carries one data frame.
	EventMessage EventType = "message"
	// EventClosed is emitted when the peer closed the connection with a close frame.
	EventClosed EventType = "closed"
	// EventFailed is emitted for dial and read failures. Err is a *errors.ConnectionError.
	EventFailed EventType = "failed"
	// EventReconnectScheduled is emitted before waiting Delay for the next dial.
	EventReconnectScheduled EventType = "reconnect_scheduled"
)

// Event is one connection level event. Only the fields relevant to Type are set.
type Event struct {
	Type EventType
	At   time.Time

	// Data is the raw frame for EventMessage.
	Data []byte

	// Code and Reason describe an EventClosed.
	Code   int
	Reason string

	// Err is set for EventFailed.
	Err error

	// Attempt is the dial number for EventConnecting and the consecutive
	// failure count for EventReconnectScheduled.
	Attempt int
	Delay   time.Duration
}
