package types

import (
	"strings"

	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
)

// DefaultCurrency is used when a trade request does not name one.
const DefaultCurrency = "USD"

// TradeRequest describes one trading session to start.
// It is immutable once submitted.
type TradeRequest struct {
	// Symbol is the instrument to trade, e.g. "BTC" or "AAPL".
	Symbol string `yaml:"symbol" json:"stock_symbol" validate:"required"`
	// Amount is the notional amount committed to the session.
	Amount float64 `yaml:"amount" json:"amount" validate:"gt=0"`
	// Currency of Amount. Defaults to USD.
	Currency string `yaml:"currency" json:"currency"`
	// Duration is the tenor understood by the server, e.g. "60", "5m" or "1d".
	Duration string `yaml:"duration" json:"duration" validate:"required"`
	// StopLoss is forwarded to the server as is. It is not checked against the amount.
	StopLoss optional.Option[float64] `yaml:"stop_loss" json:"stop_loss"`
	// TakeProfit is forwarded to the server as is. It is not checked against the amount.
	TakeProfit optional.Option[float64] `yaml:"take_profit" json:"take_profit"`
}

// Normalize returns a copy with surrounding whitespace removed and the default currency applied.
func (r TradeRequest) Normalize() TradeRequest {
	r.Symbol = strings.TrimSpace(r.Symbol)
	r.Duration = strings.TrimSpace(r.Duration)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))

	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}

	return r
}

// Validate checks the request shape. It does not validate business rules.
func (r TradeRequest) Validate() error {
	normalized := r.Normalize()

	if fields := ValidateStruct(normalized); len(fields) > 0 {
		return errors.NewValidationError("invalid trade request", fields...)
	}

	return nil
}
