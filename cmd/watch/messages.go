package main

import (
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// SymbolsLoadedMsg carries the tradable symbols.
type SymbolsLoadedMsg struct {
	Symbols []string
}

// SessionStartedMsg signals that the session was provisioned and its stream is connecting.
type SessionStartedMsg struct {
	ID string
}

// SessionErrorMsg indicates that the session could not be started.
type SessionErrorMsg struct {
	Err error
}

// StatusMsg carries one status transition.
type StatusMsg struct {
	Change session.StatusChange
}

// CandleMsg carries an appended or revised candle.
type CandleMsg struct {
	Candle   types.Candle
	Appended bool
}

// MarkerMsg carries a new overlay marker.
type MarkerMsg struct {
	Marker types.TradeMarker
}

// TradeMsg carries a new ledger entry.
type TradeMsg struct {
	Trade types.TradeEvent
}

// BalanceMsg carries the latest balance.
type BalanceMsg struct {
	Balance types.BalanceSnapshot
}

// DecodeErrorMsg reports a dropped stream payload.
type DecodeErrorMsg struct {
	Err error
}

// streamClosedMsg is sent once the session stops producing events.
type streamClosedMsg struct{}
