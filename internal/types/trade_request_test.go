package types

import (
	"testing"

	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type TradeRequestTestSuite struct {
	suite.Suite
}

func TestTradeRequestSuite(t *testing.T) {
	suite.Run(t, new(TradeRequestTestSuite))
}

func (suite *TradeRequestTestSuite) TestValidate() {
	tests := []struct {
		name          string
		request       TradeRequest
		expectError   bool
		invalidFields []string
	}{
		{
			name: "valid request",
			request: TradeRequest{
				Symbol:     "BTC",
				Amount:     100,
				Duration:   "60",
				StopLoss:   optional.None[float64](),
				TakeProfit: optional.None[float64](),
			},
			expectError: false,
		},
		{
			name: "valid request with stop loss and take profit",
			request: TradeRequest{
				Symbol:     "AAPL",
				Amount:     250.5,
				Currency:   "eur",
				Duration:   "1h",
				StopLoss:   optional.Some(90.0),
				TakeProfit: optional.Some(120.0),
			},
			expectError: false,
		},
		{
			name:          "zero amount",
			request:       TradeRequest{Symbol: "BTC", Amount: 0, Duration: "60"},
			expectError:   true,
			invalidFields: []string{"amount"},
		},
		{
			name:          "negative amount",
			request:       TradeRequest{Symbol: "BTC", Amount: -5, Duration: "60"},
			expectError:   true,
			invalidFields: []string{"amount"},
		},
		{
			name:          "blank symbol",
			request:       TradeRequest{Symbol: "   ", Amount: 10, Duration: "60"},
			expectError:   true,
			invalidFields: []string{"symbol"},
		},
		{
			name:          "missing duration",
			request:       TradeRequest{Symbol: "BTC", Amount: 10},
			expectError:   true,
			invalidFields: []string{"duration"},
		},
		{
			name:          "everything missing",
			request:       TradeRequest{},
			expectError:   true,
			invalidFields: []string{"symbol", "amount", "duration"},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := tt.request.Validate()
			if !tt.expectError {
				suite.NoError(err)

				return
			}

			suite.Require().Error(err)
			suite.True(errors.IsValidationError(err))
			suite.Equal(errors.ErrCodeInvalidTradeRequest, errors.GetCode(err))

			var validationErr *errors.ValidationError
			suite.Require().True(errors.As(err, &validationErr))

			fields := make([]string, 0, len(validationErr.Fields))
			for _, f := range validationErr.Fields {
				fields = append(fields, f.Field)
			}
			suite.ElementsMatch(tt.invalidFields, fields)
		})
	}
}

func (suite *TradeRequestTestSuite) TestNormalize() {
	req := TradeRequest{Symbol: "  BTC ", Amount: 1, Duration: " 60 ", Currency: " usd "}.Normalize()
	suite.Equal("BTC", req.Symbol)
	suite.Equal("60", req.Duration)
	suite.Equal("USD", req.Currency)

	req = TradeRequest{Symbol: "BTC", Amount: 1, Duration: "60"}.Normalize()
	suite.Equal(DefaultCurrency, req.Currency)
}

func (suite *TradeRequestTestSuite) TestValidationMessages() {
	err := TradeRequest{Symbol: "BTC", Amount: 0, Duration: "60"}.Validate()

	var validationErr *errors.ValidationError
	suite.Require().True(errors.As(err, &validationErr))
	suite.Require().Len(validationErr.Fields, 1)
	suite.Equal("amount: must be greater than 0", validationErr.Fields[0].String())
}
