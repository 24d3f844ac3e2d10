package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type TrackerTestSuite struct {
	suite.Suite
	start time.Time
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) SetupTest() {
	s.start = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func (s *TrackerTestSuite) newTracker() *Tracker {
	return NewTracker("run_1", types.TradeRequest{Symbol: "BTC", Amount: 100, Duration: "60"}, s.start, logger.NewNopLogger())
}

func (s *TrackerTestSuite) TestEmptySummary() {
	summary := s.newTracker().Summary()

	s.Equal("run_1", summary.ID)
	s.Equal("2026-03-14", summary.Date)
	s.Equal("BTC", summary.Request.Symbol)
	s.Equal("USD", summary.Request.Currency)
	s.Equal(0, summary.TradeResult.NumberOfTrades)
	s.True(summary.TradePnl.RealizedPnL.IsZero())
}

func (s *TrackerTestSuite) TestRecordTrade() {
	tracker := s.newTracker()

	trades := []types.TradeEvent{
		{Time: 1, Side: types.SideBuy, Price: 100, Amount: 1},
		{Time: 2, Side: types.SideSell, Price: 110, Amount: 1, PnL: 10},
		{Time: 3, Side: types.SideBuy, Price: 105, Amount: 1},
		{Time: 4, Side: types.SideSell, Price: 101, Amount: 1, PnL: -4},
		{Time: 5, Side: types.SideSell, Price: 120, Amount: 1, PnL: 2.5},
	}
	for _, trade := range trades {
		tracker.RecordTrade(trade)
	}

	summary := tracker.Summary()
	s.Equal(5, summary.TradeResult.NumberOfTrades)
	s.Equal(2, summary.TradeResult.NumberOfBuys)
	s.Equal(3, summary.TradeResult.NumberOfSells)
	s.Equal(2, summary.TradeResult.NumberOfWinningTrades)
	s.Equal(1, summary.TradeResult.NumberOfLosingTrades)
	s.InDelta(2.0/3.0, summary.TradeResult.WinRate, 1e-9)
	s.Equal("8.5", summary.TradePnl.RealizedPnL.String())
	s.Equal("10", summary.TradePnl.MaximumProfit.String())
	s.Equal("-4", summary.TradePnl.MaximumLoss.String())
}

func (s *TrackerTestSuite) TestFinish() {
	tracker := s.newTracker()

	state := types.NewSessionState()
	state.Handle = types.SessionHandle{ID: "abc", OpenedAt: s.start}
	state.Status = types.SessionStatusCompleted
	state.Candles = []types.Candle{{Time: 1000, Close: 1.8}}
	state.Markers = []types.TradeMarker{{Time: 1000, Side: types.SideBuy}}
	state.Balance = optional.Some(types.NewBalanceSnapshot(950, "USD"))

	end := s.start.Add(time.Minute)
	summary := tracker.Finish(state, session.Counters{MessagesApplied: 4, DecodeErrors: 1, Reconnects: 2}, end)

	s.Equal("abc", summary.SessionID)
	s.Equal(types.SessionStatusCompleted, summary.Status)
	s.Equal(end, summary.SessionEnd)
	s.Equal(1, summary.NumberOfCandles)
	s.Equal(1, summary.NumberOfMarkers)
	s.Equal(2, summary.Reconnects)
	s.Equal(1, summary.DecodeErrors)
	s.Equal("950.00 USD", summary.FinalBalance)
}

func (s *TrackerTestSuite) TestWriteAndReadSummary() {
	tracker := s.newTracker()
	tracker.RecordTrade(types.TradeEvent{Time: 2, Side: types.SideSell, Price: 110, Amount: 1, PnL: 10})

	path := filepath.Join(s.T().TempDir(), SummaryFileName)
	s.Require().NoError(WriteSummary(path, tracker.Summary()))

	read, err := ReadSummary(path)
	s.Require().NoError(err)
	s.Equal("run_1", read.ID)
	s.Equal(1, read.TradeResult.NumberOfSells)
	s.True(read.TradePnl.RealizedPnL.Equal(tracker.Summary().TradePnl.RealizedPnL))
}

func (s *TrackerTestSuite) TestReadSummaryMissing() {
	_, err := ReadSummary(filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Error(err)
}
