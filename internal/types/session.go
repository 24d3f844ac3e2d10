package types

import "time"

// SessionStatus represents where a trading session is in its lifecycle.
type SessionStatus string

const (
	// SessionStatusIdle indicates no trade request has been submitted yet.
	SessionStatusIdle SessionStatus = "idle"

	// SessionStatusStarting indicates the start call is in flight.
	SessionStatusStarting SessionStatus = "starting"

	// SessionStatusAwaitingStream indicates the session exists server-side and the stream is connecting.
	SessionStatusAwaitingStream SessionStatus = "awaiting_stream"

	// SessionStatusLive indicates the stream is open and events are being applied.
	SessionStatusLive SessionStatus = "live"

	// SessionStatusReconnecting indicates the stream dropped and a reconnect is pending.
	SessionStatusReconnecting SessionStatus = "reconnecting"

	// SessionStatusCompleted indicates the server finished the session or the user left it.
	SessionStatusCompleted SessionStatus = "completed"

	// SessionStatusFailed indicates the session could not start or was cancelled while disconnected.
	SessionStatusFailed SessionStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible from s.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

// Label returns the text shown to users for s.
func (s SessionStatus) Label() string {
	switch s {
	case SessionStatusIdle:
		return "Idle"
	case SessionStatusStarting:
		return "Starting…"
	case SessionStatusAwaitingStream:
		return "Connecting…"
	case SessionStatusLive:
		return "Live"
	case SessionStatusReconnecting:
		return "Reconnecting…"
	case SessionStatusCompleted:
		return "Completed"
	case SessionStatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// SessionHandle identifies a provisioned session on the remote service.
type SessionHandle struct {
	// ID is the session identifier. Empty means the anonymous default stream.
	ID string `yaml:"id" json:"id"`
	// OpenedAt is when the start call succeeded.
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at"`
}

// IsAnonymous reports whether the handle carries no session identifier.
func (h SessionHandle) IsAnonymous() bool {
	return h.ID == ""
}

// StartResult is the outcome of a successful start call.
type StartResult struct {
	Handle  SessionHandle   `yaml:"handle" json:"handle"`
	Balance BalanceSnapshot `yaml:"balance" json:"balance"`
}
