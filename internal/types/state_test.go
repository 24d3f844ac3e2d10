package types

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StateTestSuite struct {
	suite.Suite
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

func (suite *StateTestSuite) TestNewSessionState() {
	state := NewSessionState()
	suite.Equal(SessionStatusIdle, state.Status)
	suite.Empty(state.Candles)
	suite.Empty(state.Markers)
	suite.Empty(state.Ledger)
	suite.True(state.Balance.IsNone())
	suite.True(state.LastCandle().IsNone())
}

func (suite *StateTestSuite) TestCloneSharesNoStorage() {
	state := NewSessionState()
	state.Candles = append(state.Candles, Candle{Time: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5})
	state.Ledger = append(state.Ledger, TradeEvent{Time: 1000, Side: SideBuy, Price: 1.5, Amount: 10})
	state.Markers = append(state.Markers, TradeMarker{Time: 1000, Side: SideSell, Price: 1.5})
	state.Balance = optional.Some(NewBalanceSnapshot(900, "USD"))

	clone := state.Clone()
	clone.Candles[0].Close = 99
	clone.Ledger[0].Price = 99
	clone.Markers[0].Price = 99

	suite.InDelta(1.5, state.Candles[0].Close, 1e-9)
	suite.InDelta(1.5, state.Ledger[0].Price, 1e-9)
	suite.InDelta(1.5, state.Markers[0].Price, 1e-9)
	suite.True(clone.Balance.IsSome())
	suite.Equal("900.00 USD", clone.Balance.Unwrap().String())

	last := state.LastCandle()
	suite.True(last.IsSome())
	suite.Equal(int64(1000), last.Unwrap().Time)
}

func (suite *StateTestSuite) TestStatusHelpers() {
	suite.True(SessionStatusCompleted.IsTerminal())
	suite.True(SessionStatusFailed.IsTerminal())
	suite.False(SessionStatusLive.IsTerminal())
	suite.False(SessionStatusReconnecting.IsTerminal())
	suite.Equal("Reconnecting…", SessionStatusReconnecting.Label())
	suite.Equal("Live", SessionStatusLive.Label())
}

func (suite *StateTestSuite) TestParseSide() {
	suite.Equal(SideSell, ParseSide("SELL"))
	suite.Equal(SideSell, ParseSide(" sell "))
	suite.Equal(SideBuy, ParseSide("buy"))
	suite.Equal(SideBuy, ParseSide(""))
	suite.Equal("Sell", SideSell.Title())
	suite.Equal("Buy", SideBuy.Title())
}

func (suite *StateTestSuite) TestSessionHandle() {
	suite.True(SessionHandle{}.IsAnonymous())
	suite.False(SessionHandle{ID: "abc", OpenedAt: time.Now()}.IsAnonymous())
}

func (suite *StateTestSuite) TestSummaryRoundTrip() {
	path := filepath.Join(suite.T().TempDir(), "summary.yaml")

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := NewSessionSummary("run_1", TradeRequest{Symbol: "BTC", Amount: 100, Currency: "USD", Duration: "60"}, start)
	summary.SessionID = "abc"
	summary.Status = SessionStatusCompleted
	summary.TradePnl.RealizedPnL = decimal.RequireFromString("12.5")
	summary.TradeResult.NumberOfTrades = 3

	suite.Require().NoError(WriteSessionSummary(path, summary))

	read, err := ReadSessionSummary(path)
	suite.Require().NoError(err)
	suite.Equal("run_1", read.ID)
	suite.Equal("abc", read.SessionID)
	suite.Equal("2026-01-02", read.Date)
	suite.Equal(SessionStatusCompleted, read.Status)
	suite.Equal(3, read.TradeResult.NumberOfTrades)
	suite.True(decimal.RequireFromString("12.5").Equal(read.TradePnl.RealizedPnL))
	suite.Equal("BTC", read.Request.Symbol)
}

func (suite *StateTestSuite) TestReadSummaryMissingFile() {
	_, err := ReadSessionSummary(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Error(err)
}
