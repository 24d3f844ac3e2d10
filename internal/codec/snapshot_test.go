package codec

import (
	"testing"

	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SnapshotTestSuite struct {
	suite.Suite
}

func TestSnapshotSuite(t *testing.T) {
	suite.Run(t, new(SnapshotTestSuite))
}

func (suite *SnapshotTestSuite) TestDecodeLiveSnapshot() {
	raw := `{
		"chart": [
			{"time": 1000, "open": 1, "high": 2, "low": 0.5, "close": 1.5},
			{"timestamp": 1060000, "close": 1.7},
			{"open": 3}
		],
		"table": [
			{"time": 1000, "side": "buy", "price": 1.5, "amount": 10},
			{"time": "1060", "side": "SELL", "price": 1.7, "amount": 10, "pnl": 2}
		],
		"status": "running",
		"tradeComplete": false
	}`

	snapshot, err := DecodeLiveSnapshot([]byte(raw))
	suite.Require().NoError(err)

	suite.Equal([]types.Candle{
		{Time: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Time: 1060, Open: 1.7, High: 1.7, Low: 1.7, Close: 1.7},
	}, snapshot.Chart)
	suite.Equal([]types.TradeEvent{
		{Time: 1000, Side: types.SideBuy, Price: 1.5, Amount: 10},
		{Time: 1060, Side: types.SideSell, Price: 1.7, Amount: 10, PnL: 2},
	}, snapshot.Table)
	suite.Equal("running", snapshot.Status)
	suite.False(snapshot.Completed)
}

func (suite *SnapshotTestSuite) TestCompletedFlags() {
	snapshot, err := DecodeLiveSnapshot([]byte(`{"status":"completed"}`))
	suite.Require().NoError(err)
	suite.True(snapshot.Completed)
	suite.Empty(snapshot.Chart)

	snapshot, err = DecodeLiveSnapshot([]byte(`{"tradeComplete":true}`))
	suite.Require().NoError(err)
	suite.True(snapshot.Completed)
}

func (suite *SnapshotTestSuite) TestInvalidBody() {
	_, err := DecodeLiveSnapshot([]byte(`<html>`))
	suite.Equal(errors.ErrCodeResponseParseFailed, errors.GetCode(err))
}
