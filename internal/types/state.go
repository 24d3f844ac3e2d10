package types

import "github.com/moznion/go-optional"

// DefaultLedgerRetention is the number of ledger entries kept when no retention is configured.
const DefaultLedgerRetention = 200

// SessionState is everything the presentation layer reads about one session.
type SessionState struct {
	Handle SessionHandle `json:"handle"`
	Status SessionStatus `json:"status"`
	// Error is the human readable reason for a failed session.
	Error string `json:"error,omitempty"`
	// Ready is set once the stream sent its ready sentinel for the current connection.
	Ready bool `json:"ready"`

	// Candles is ordered by time, oldest first. It keeps the whole session;
	// only the ledger is bounded.
	Candles []Candle `json:"candles"`
	// Markers is ordered by arrival, oldest first, and kept for the whole session.
	Markers []TradeMarker `json:"markers"`
	// Ledger is ordered by arrival, newest first.
	Ledger []TradeEvent `json:"ledger"`

	Balance optional.Option[BalanceSnapshot] `json:"balance"`
}

// NewSessionState returns an empty idle state.
func NewSessionState() SessionState {
	//nolint:exhaustruct
	return SessionState{
		Status:  SessionStatusIdle,
		Candles: []Candle{},
		Markers: []TradeMarker{},
		Ledger:  []TradeEvent{},
		Balance: optional.None[BalanceSnapshot](),
	}
}

// Clone returns a deep copy that shares no storage with s.
func (s SessionState) Clone() SessionState {
	out := s
	out.Candles = append(make([]Candle, 0, len(s.Candles)), s.Candles...)
	out.Markers = append(make([]TradeMarker, 0, len(s.Markers)), s.Markers...)
	out.Ledger = append(make([]TradeEvent, 0, len(s.Ledger)), s.Ledger...)

	if s.Balance.IsSome() {
		out.Balance = optional.Some(s.Balance.Unwrap())
	} else {
		out.Balance = optional.None[BalanceSnapshot]()
	}

	return out
}

// LastCandle returns the most recent candle, if any.
func (s SessionState) LastCandle() optional.Option[Candle] {
	if len(s.Candles) == 0 {
		return optional.None[Candle]()
	}

	return optional.Some(s.Candles[len(s.Candles)-1])
}
