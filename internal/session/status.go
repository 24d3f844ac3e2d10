package session

import (
	"sync"

	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

// transitions lists the legal edges of the session lifecycle.
// Completed and Failed have no outgoing edges.
var transitions = map[types.SessionStatus][]types.SessionStatus{
	types.SessionStatusIdle: {
		types.SessionStatusStarting,
	},
	types.SessionStatusStarting: {
		types.SessionStatusAwaitingStream,
		types.SessionStatusFailed,
	},
	types.SessionStatusAwaitingStream: {
		types.SessionStatusLive,
		types.SessionStatusReconnecting,
		types.SessionStatusCompleted,
		types.SessionStatusFailed,
	},
	types.SessionStatusLive: {
		types.SessionStatusReconnecting,
		types.SessionStatusCompleted,
		types.SessionStatusFailed,
	},
	types.SessionStatusReconnecting: {
		types.SessionStatusLive,
		types.SessionStatusCompleted,
		types.SessionStatusFailed,
	},
}

// StatusChange is one observed transition.
type StatusChange struct {
	From types.SessionStatus
	To   types.SessionStatus
	// Detail is the human readable reason attached to a Failed transition.
	Detail string
}

// StatusMachine guards the session lifecycle. It is the single arbiter other
// components consult before acting, e.g. before scheduling a reconnect.
type StatusMachine struct {
	mu     sync.RWMutex
	status types.SessionStatus
}

// NewStatusMachine returns a machine in the Idle state.
func NewStatusMachine() *StatusMachine {
	return &StatusMachine{
		mu:     sync.RWMutex{},
		status: types.SessionStatusIdle,
	}
}

// Status returns the current status.
func (m *StatusMachine) Status() types.SessionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.status
}

// IsTerminal reports whether the machine reached Completed or Failed.
func (m *StatusMachine) IsTerminal() bool {
	return m.Status().IsTerminal()
}

// CanReconnect reports whether a dropped connection may be retried.
func (m *StatusMachine) CanReconnect() bool {
	switch m.Status() {
	case types.SessionStatusAwaitingStream, types.SessionStatusLive, types.SessionStatusReconnecting:
		return true
	default:
		return false
	}
}

// Transition moves the machine to next and returns the change.
// A transition to the current status is a no-op and returns ok == false.
func (m *StatusMachine) Transition(next types.SessionStatus) (change StatusChange, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.status
	if current.IsTerminal() {
		return StatusChange{}, false, errors.Newf(errors.ErrCodeTerminalState,
			"session is %s, cannot move to %s", current, next)
	}

	if current == next {
		return StatusChange{}, false, nil
	}

	if !allowed(current, next) {
		return StatusChange{}, false, errors.Newf(errors.ErrCodeInvalidTransition,
			"invalid session transition %s -> %s", current, next)
	}

	m.status = next

	return StatusChange{From: current, To: next, Detail: ""}, true, nil
}

func allowed(from, to types.SessionStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}

	return false
}
