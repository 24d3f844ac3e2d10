package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// DataGenerator generates realistic stream payloads for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// StartTime is the time of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:    time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        100,
		InitialPrice: 100.0,
		Volatility:   0.002,
		Trend:        0.0,
	}
}

// Candles creates a time ordered candle series following a geometric Brownian motion.
func (g *DataGenerator) Candles(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		high := math.Max(open, close) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, close) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		candles[i] = types.Candle{
			Time:  currentTime.Unix(),
			Open:  roundToDecimals(open, 4),
			High:  roundToDecimals(high, 4),
			Low:   roundToDecimals(low, 4),
			Close: roundToDecimals(close, 4),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return candles
}

// Trades creates one alternating buy/sell execution for every step-th candle.
// Sells realize the price difference to the preceding buy.
func (g *DataGenerator) Trades(candles []types.Candle, step int, amount float64) []types.TradeEvent {
	if step <= 0 {
		step = 1
	}

	var (
		trades []types.TradeEvent
		entry  float64
	)

	for i := 0; i < len(candles); i += step {
		side := types.SideBuy
		pnl := 0.0

		if len(trades)%2 == 1 {
			side = types.SideSell
			pnl = roundToDecimals((candles[i].Close-entry)*amount, 2)
		} else {
			entry = candles[i].Close
		}

		trades = append(trades, types.TradeEvent{
			Time:   candles[i].Time,
			Side:   side,
			Price:  candles[i].Close,
			Amount: amount,
			PnL:    pnl,
		})
	}

	return trades
}

// ChartFrame encodes c as a chart payload.
func ChartFrame(c types.Candle) []byte {
	return mustMarshal(map[string]any{
		"type":  "chart",
		"time":  c.Time,
		"open":  c.Open,
		"high":  c.High,
		"low":   c.Low,
		"close": c.Close,
	})
}

// ChartBatchFrame encodes candles as one array frame.
func ChartBatchFrame(candles []types.Candle) []byte {
	items := make([]map[string]any, 0, len(candles))
	for _, c := range candles {
		items = append(items, map[string]any{
			"type":  "chart",
			"time":  c.Time,
			"open":  c.Open,
			"high":  c.High,
			"low":   c.Low,
			"close": c.Close,
		})
	}

	return mustMarshal(items)
}

// TradeFrame encodes t as an overlay marker payload.
func TradeFrame(t types.TradeEvent) []byte {
	return mustMarshal(map[string]any{
		"type":  "trade",
		"time":  t.Time,
		"side":  string(t.Side),
		"price": t.Price,
		"label": t.Side.Title(),
	})
}

// TradeHistoryFrame encodes t as a ledger payload.
func TradeHistoryFrame(t types.TradeEvent) []byte {
	return mustMarshal(map[string]any{
		"type":   "trade_history",
		"time":   t.Time,
		"side":   string(t.Side),
		"price":  t.Price,
		"amount": t.Amount,
		"pnl":    t.PnL,
	})
}

// BalanceFrame encodes a balance payload.
func BalanceFrame(amount float64, currency string) []byte {
	return mustMarshal(map[string]any{
		"type":     "balance",
		"balance":  amount,
		"currency": currency,
	})
}

// CompletedFrame is the payload the server sends when the session is over.
func CompletedFrame() []byte {
	return []byte(`{"status":"completed"}`)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return data
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
