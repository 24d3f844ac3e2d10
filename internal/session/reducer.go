package session

import (
	"github.com/joshua1code/Q-bot-FD/internal/codec"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/moznion/go-optional"
)

// Effects reports what applying one event did beyond changing state.
type Effects struct {
	// Complete is set when the server signalled that the session is over.
	Complete bool
	// Dropped is set when the event was well formed but ignored, e.g. an out of order candle.
	Dropped bool
	// Appended is set when a chart event opened a new bar rather than revising the last one.
	Appended bool
}

// Reduce folds one event into state. It performs no I/O.
//
// The returned state may share backing storage with state, so the caller
// must treat state as consumed. Use SessionState.Clone to hand copies to readers.
func Reduce(state types.SessionState, event codec.Event, retention int) (types.SessionState, Effects) {
	var effects Effects

	switch ev := event.(type) {
	case codec.ChartEvent:
		state, effects = reduceChart(state, ev)
	case codec.TradeEvent:
		state.Markers = append(state.Markers, ev.Marker)
	case codec.TradeHistoryEvent:
		state.Ledger = prependBounded(state.Ledger, ev.Trade, retention)
	case codec.BalanceEvent:
		currency := ev.Currency.TakeOr("")
		if currency == "" && state.Balance.IsSome() {
			currency = state.Balance.Unwrap().Currency
		}

		state.Balance = optional.Some(types.BalanceSnapshot{Amount: ev.Amount, Currency: currency})
	case codec.StatusEvent:
		effects.Complete = ev.IsCompleted()
	default:
		effects.Dropped = true
	}

	return state, effects
}

func reduceChart(state types.SessionState, ev codec.ChartEvent) (types.SessionState, Effects) {
	n := len(state.Candles)

	if n > 0 {
		last := state.Candles[n-1]

		switch {
		case ev.Time < last.Time:
			return state, Effects{Dropped: true}
		case ev.Time == last.Time:
			state.Candles[n-1] = reviseCandle(last, ev)

			return state, Effects{}
		}
	}

	state.Candles = append(state.Candles, newCandle(ev))

	return state, Effects{Appended: true}
}

// reviseCandle overwrites the fields present in ev and keeps the rest.
func reviseCandle(c types.Candle, ev codec.ChartEvent) types.Candle {
	c.Open = ev.Open.TakeOr(c.Open)
	c.High = ev.High.TakeOr(c.High)
	c.Low = ev.Low.TakeOr(c.Low)
	c.Close = ev.Close.TakeOr(c.Close)

	return c
}

// newCandle fills absent prices with the first present one of close, open, high and low.
func newCandle(ev codec.ChartEvent) types.Candle {
	fallback := ev.Close.Or(ev.Open).Or(ev.High).Or(ev.Low).TakeOr(0)

	return types.Candle{
		Time:  ev.Time,
		Open:  ev.Open.TakeOr(fallback),
		High:  ev.High.TakeOr(fallback),
		Low:   ev.Low.TakeOr(fallback),
		Close: ev.Close.TakeOr(fallback),
	}
}

func prependBounded(ledger []types.TradeEvent, trade types.TradeEvent, retention int) []types.TradeEvent {
	if retention <= 0 {
		retention = types.DefaultLedgerRetention
	}

	size := len(ledger) + 1
	if size > retention {
		size = retention
	}

	out := make([]types.TradeEvent, size)
	out[0] = trade
	copy(out[1:], ledger)

	return out
}
