package types

import (
	"strings"
	"time"
)

// Side is the direction of an execution.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalizes a side string from the wire. Anything that is not a sell is a buy.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sell", "short", "s":
		return SideSell
	default:
		return SideBuy
	}
}

// Title returns the side formatted for tables, e.g. "Buy".
func (s Side) Title() string {
	if s == SideSell {
		return "Sell"
	}

	return "Buy"
}

// TradeMarker is a point-in-time annotation drawn on the price series.
// Markers are never part of the trade ledger.
type TradeMarker struct {
	Time  int64   `yaml:"time" json:"time" csv:"time"`
	Side  Side    `yaml:"side" json:"side" csv:"side"`
	Price float64 `yaml:"price" json:"price" csv:"price"`
	Label string  `yaml:"label" json:"label" csv:"label"`
}

// TradeEvent is one executed trade in the ledger.
type TradeEvent struct {
	Time   int64   `yaml:"time" json:"time" csv:"time"`
	Side   Side    `yaml:"side" json:"side" csv:"side"`
	Price  float64 `yaml:"price" json:"price" csv:"price"`
	Amount float64 `yaml:"amount" json:"amount" csv:"amount"`
	// PnL is the realized profit or loss of this trade. Zero for opening trades.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// Timestamp returns the trade time as a time.Time in UTC.
func (t TradeEvent) Timestamp() time.Time {
	return time.Unix(t.Time, 0).UTC()
}
