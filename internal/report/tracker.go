package report

import (
	"sync"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SummaryFileName is the summary written into every run folder.
const SummaryFileName = "summary.yaml"

// Tracker accumulates trade statistics while a session streams. Every ledger
// trade is counted, including the ones the bounded ledger later drops.
type Tracker struct {
	mu      sync.Mutex
	summary types.SessionSummary
	closed  int
	logger  *logger.Logger
}

// NewTracker creates a Tracker for one run.
func NewTracker(runID string, req types.TradeRequest, start time.Time, log *logger.Logger) *Tracker {
	return &Tracker{
		mu:      sync.Mutex{},
		summary: types.NewSessionSummary(runID, req.Normalize(), start),
		closed:  0,
		logger:  log,
	}
}

// RecordTrade adds one ledger trade to the statistics.
func (t *Tracker) RecordTrade(trade types.TradeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := &t.summary.TradeResult
	pnl := &t.summary.TradePnl

	result.NumberOfTrades++

	if trade.Side == types.SideSell {
		result.NumberOfSells++
	} else {
		result.NumberOfBuys++
	}

	value := decimal.NewFromFloat(trade.PnL)
	pnl.RealizedPnL = pnl.RealizedPnL.Add(value)

	switch {
	case value.IsPositive():
		result.NumberOfWinningTrades++
		t.closed++

		if value.GreaterThan(pnl.MaximumProfit) {
			pnl.MaximumProfit = value
		}
	case value.IsNegative():
		result.NumberOfLosingTrades++
		t.closed++

		if value.LessThan(pnl.MaximumLoss) {
			pnl.MaximumLoss = value
		}
	}

	if t.closed > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(t.closed)
	}
}

// Finish stamps the final state of the session onto the summary and returns it.
func (t *Tracker) Finish(state types.SessionState, counters session.Counters, end time.Time) types.SessionSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.SessionID = state.Handle.ID
	t.summary.SessionEnd = end
	t.summary.Status = state.Status
	t.summary.Error = state.Error
	t.summary.NumberOfCandles = len(state.Candles)
	t.summary.NumberOfMarkers = len(state.Markers)
	t.summary.Reconnects = counters.Reconnects
	t.summary.DecodeErrors = counters.DecodeErrors

	if state.Balance.IsSome() {
		t.summary.FinalBalance = state.Balance.Unwrap().String()
	}

	t.logger.Info("Session summary ready",
		zap.String("run_id", t.summary.ID),
		zap.String("status", string(t.summary.Status)),
		zap.Int("trades", t.summary.TradeResult.NumberOfTrades),
		zap.String("realized_pnl", t.summary.TradePnl.RealizedPnL.String()),
	)

	return t.summary
}

// Summary returns the statistics accumulated so far.
func (t *Tracker) Summary() types.SessionSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.summary
}

// WriteSummary writes summary as YAML to path.
func WriteSummary(path string, summary types.SessionSummary) error {
	if err := types.WriteSessionSummary(path, summary); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write session summary", err)
	}

	return nil
}

// ReadSummary reads a summary written by WriteSummary.
func ReadSummary(path string) (types.SessionSummary, error) {
	summary, err := types.ReadSessionSummary(path)
	if err != nil {
		return types.SessionSummary{}, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to read session summary", err)
	}

	return summary, nil
}
