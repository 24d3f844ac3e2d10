package codec

import (
	"strings"

	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Kind discriminates the typed events carried on the stream.
type Kind string

const (
	KindChart        Kind = "chart"
	KindTrade        Kind = "trade"
	KindTradeHistory Kind = "trade_history"
	KindBalance      Kind = "balance"
	KindStatus       Kind = "status"
)

// StatusCompleted is the status value that ends a session.
const StatusCompleted = "completed"

// Event is one decoded stream event.
type Event interface {
	Kind() Kind
}

// ChartEvent is a candle update. Prices absent from the payload are None.
type ChartEvent struct {
	Time  int64
	Open  optional.Option[float64]
	High  optional.Option[float64]
	Low   optional.Option[float64]
	Close optional.Option[float64]
}

// Kind implements Event.
func (ChartEvent) Kind() Kind { return KindChart }

// TradeEvent is a single execution to draw on the price series.
type TradeEvent struct {
	Marker types.TradeMarker
}

// Kind implements Event.
func (TradeEvent) Kind() Kind { return KindTrade }

// TradeHistoryEvent is one ledger entry.
type TradeHistoryEvent struct {
	Trade types.TradeEvent
}

// Kind implements Event.
func (TradeHistoryEvent) Kind() Kind { return KindTradeHistory }

// BalanceEvent replaces the balance snapshot. An absent currency keeps the current one.
type BalanceEvent struct {
	Amount   decimal.Decimal
	Currency optional.Option[string]
}

// Kind implements Event.
func (BalanceEvent) Kind() Kind { return KindBalance }

// StatusEvent is a lifecycle signal from the server.
type StatusEvent struct {
	Status string
}

// Kind implements Event.
func (StatusEvent) Kind() Kind { return KindStatus }

// IsCompleted reports whether the server ended the session.
func (e StatusEvent) IsCompleted() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), StatusCompleted)
}
