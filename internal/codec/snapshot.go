package codec

import (
	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

type snapshotPayload struct {
	Chart         []payload `json:"chart"`
	Table         []payload `json:"table"`
	Status        string    `json:"status"`
	TradeComplete bool      `json:"tradeComplete"`
}

// DecodeLiveSnapshot parses the body of the one-shot live endpoint. Chart and
// table rows share the field rules of stream payloads; rows without a time are skipped.
func DecodeLiveSnapshot(raw []byte) (types.LiveSnapshot, error) {
	var p snapshotPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.LiveSnapshot{}, errors.Wrap(errors.ErrCodeResponseParseFailed, "invalid live snapshot", err)
	}

	snapshot := types.LiveSnapshot{
		Chart:     make([]types.Candle, 0, len(p.Chart)),
		Table:     make([]types.TradeEvent, 0, len(p.Table)),
		Status:    p.Status,
		Completed: p.TradeComplete || StatusEvent{Status: p.Status}.IsCompleted(),
	}

	for _, row := range p.Chart {
		event, _, _ := decodeChart(row)
		if event == nil {
			continue
		}

		ev, _ := event.(ChartEvent)
		fallback := ev.Close.Or(ev.Open).Or(ev.High).Or(ev.Low).TakeOr(0)
		snapshot.Chart = append(snapshot.Chart, types.Candle{
			Time:  ev.Time,
			Open:  ev.Open.TakeOr(fallback),
			High:  ev.High.TakeOr(fallback),
			Low:   ev.Low.TakeOr(fallback),
			Close: ev.Close.TakeOr(fallback),
		})
	}

	for _, row := range p.Table {
		t, ok := row.time()
		if !ok {
			continue
		}

		snapshot.Table = append(snapshot.Table, types.TradeEvent{
			Time:   t,
			Side:   types.ParseSide(row.Side),
			Price:  valueOr(row.Price),
			Amount: valueOr(row.Amount),
			PnL:    valueOr(row.PnL),
		})
	}

	return snapshot, nil
}
