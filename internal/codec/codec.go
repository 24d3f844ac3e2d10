// Package codec turns raw stream frames into typed events.
//
// A frame is either one JSON object or an array of objects. Every object is
// decoded on its own, so one malformed element only drops that element.
package codec

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Values above this are treated as milliseconds.
const millisecondThreshold = 1_000_000_000_000

// epochSeconds accepts seconds, milliseconds, numeric strings and RFC 3339 timestamps.
type epochSeconds int64

func (e *epochSeconds) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		s = strings.TrimSpace(s)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*e = fromNumber(n)

			return nil
		}

		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return errors.Newf(errors.ErrCodeDecodeFailed, "unsupported time value %q", s)
		}

		*e = epochSeconds(t.Unix())

		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*e = fromNumber(n)

	return nil
}

func fromNumber(n float64) epochSeconds {
	if n >= millisecondThreshold {
		return epochSeconds(int64(n) / 1000)
	}

	return epochSeconds(int64(n))
}

// payload is the union of every field any event kind carries.
type payload struct {
	Type          *string          `json:"type"`
	Status        *string          `json:"status"`
	TradeComplete bool             `json:"tradeComplete"`
	Time          *epochSeconds    `json:"time"`
	Timestamp     *epochSeconds    `json:"timestamp"`
	Open          *float64         `json:"open"`
	High          *float64         `json:"high"`
	Low           *float64         `json:"low"`
	Close         *float64         `json:"close"`
	Side          string           `json:"side"`
	Price         *float64         `json:"price"`
	Amount        *float64         `json:"amount"`
	PnL           *float64         `json:"pnl"`
	Label         string           `json:"label"`
	Balance       *decimal.Decimal `json:"balance"`
	Currency      *string          `json:"currency"`
}

func (p payload) time() (int64, bool) {
	switch {
	case p.Time != nil:
		return int64(*p.Time), true
	case p.Timestamp != nil:
		return int64(*p.Timestamp), true
	default:
		return 0, false
	}
}

// Decode parses one transport frame. It returns the events in frame order and
// one *errors.DecodeError per payload that was dropped.
func Decode(raw []byte) ([]Event, []error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, []error{errors.NewDecodeError(errors.ErrCodeDecodeFailed, -1, "empty frame", raw)}
	}

	switch trimmed[0] {
	case '{':
		return decodeObject(0, trimmed)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, []error{errors.NewDecodeError(errors.ErrCodeDecodeFailed, -1, "invalid JSON array: "+err.Error(), raw)}
		}

		var (
			events []Event
			errs   []error
		)

		for i, item := range items {
			decoded, itemErrs := decodeObject(i, item)
			events = append(events, decoded...)
			errs = append(errs, itemErrs...)
		}

		return events, errs
	default:
		return nil, []error{errors.NewDecodeError(errors.ErrCodeDecodeFailed, -1, "frame is neither a JSON object nor an array", raw)}
	}
}

func decodeObject(index int, raw []byte) ([]Event, []error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, []error{errors.NewDecodeError(errors.ErrCodeDecodeFailed, index, "invalid JSON object: "+err.Error(), raw)}
	}

	status := statusOf(p)
	if p.Type == nil && status == "" {
		return nil, []error{errors.NewDecodeError(errors.ErrCodeMissingField, index, "payload has neither type nor status", raw)}
	}

	events := make([]Event, 0, 2)

	var errs []error

	if p.Type != nil {
		// A rejected typed part does not cancel the status carried beside it.
		if event, reason, code := decodeTyped(p); event != nil {
			events = append(events, event)
		} else {
			errs = append(errs, errors.NewDecodeError(code, index, reason, raw))
		}
	}

	if status != "" {
		events = append(events, StatusEvent{Status: status})
	}

	return events, errs
}

func statusOf(p payload) string {
	if p.Status != nil {
		if s := strings.TrimSpace(*p.Status); s != "" {
			return s
		}
	}

	if p.TradeComplete {
		return StatusCompleted
	}

	return ""
}

func decodeTyped(p payload) (Event, string, errors.ErrorCode) {
	kind := Kind(strings.ToLower(strings.TrimSpace(*p.Type)))

	switch kind {
	case KindChart:
		return decodeChart(p)
	case KindTrade:
		t, ok := p.time()
		if !ok || t <= 0 {
			return nil, "trade requires time", errors.ErrCodeMissingField
		}

		if p.Price == nil {
			return nil, "trade requires price", errors.ErrCodeMissingField
		}

		return TradeEvent{Marker: types.TradeMarker{
			Time:  t,
			Side:  types.ParseSide(p.Side),
			Price: *p.Price,
			Label: p.Label,
		}}, "", 0
	case KindTradeHistory:
		t, ok := p.time()
		if !ok || t <= 0 {
			return nil, "trade_history requires time", errors.ErrCodeMissingField
		}

		if p.Price == nil {
			return nil, "trade_history requires price", errors.ErrCodeMissingField
		}

		return TradeHistoryEvent{Trade: types.TradeEvent{
			Time:   t,
			Side:   types.ParseSide(p.Side),
			Price:  *p.Price,
			Amount: valueOr(p.Amount),
			PnL:    valueOr(p.PnL),
		}}, "", 0
	case KindBalance:
		if p.Balance == nil {
			return nil, "balance requires balance", errors.ErrCodeMissingField
		}

		currency := optional.None[string]()
		if p.Currency != nil && strings.TrimSpace(*p.Currency) != "" {
			currency = optional.Some(strings.TrimSpace(*p.Currency))
		}

		return BalanceEvent{Amount: *p.Balance, Currency: currency}, "", 0
	default:
		return nil, "unknown event type " + strconv.Quote(string(kind)), errors.ErrCodeUnknownEventType
	}
}

func decodeChart(p payload) (Event, string, errors.ErrorCode) {
	t, ok := p.time()
	if !ok || t <= 0 {
		return nil, "chart requires time", errors.ErrCodeMissingField
	}

	if p.Open == nil && p.High == nil && p.Low == nil && p.Close == nil {
		return nil, "chart carries no price", errors.ErrCodeMissingField
	}

	return ChartEvent{
		Time:  t,
		Open:  toOption(p.Open),
		High:  toOption(p.High),
		Low:   toOption(p.Low),
		Close: toOption(p.Close),
	}, "", 0
}

func toOption(v *float64) optional.Option[float64] {
	if v == nil {
		return optional.None[float64]()
	}

	return optional.Some(*v)
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}
