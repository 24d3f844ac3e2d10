package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// TradeResult contains trade counts and win rate.
type TradeResult struct {
	// Count of all ledger entries.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of buy executions.
	NumberOfBuys int `yaml:"number_of_buys" json:"number_of_buys"`
	// Count of sell executions.
	NumberOfSells int `yaml:"number_of_sells" json:"number_of_sells"`
	// Count of trades with positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of trades with negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Winning trades over trades that closed with a non-zero pnl.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
}

// TradePnl contains the realized profit and loss breakdown.
type TradePnl struct {
	// Sum of every ledger entry's pnl.
	RealizedPnL decimal.Decimal `yaml:"realized_pnl" json:"realized_pnl"`
	// Smallest single pnl, zero when no trade lost.
	MaximumLoss decimal.Decimal `yaml:"maximum_loss" json:"maximum_loss"`
	// Largest single pnl, zero when no trade won.
	MaximumProfit decimal.Decimal `yaml:"maximum_profit" json:"maximum_profit"`
}

// SessionSummary is the post-mortem written when a session ends.
type SessionSummary struct {
	// ID is the run folder name, e.g. "run_1".
	ID string `yaml:"id" json:"id"`

	// SessionID is the server's session identifier.
	SessionID string `yaml:"session_id" json:"session_id"`

	// Date is the date of the run in YYYY-MM-DD format.
	Date string `yaml:"date" json:"date"`

	SessionStart time.Time `yaml:"session_start" json:"session_start"`
	SessionEnd   time.Time `yaml:"session_end" json:"session_end"`

	Request TradeRequestSummary `yaml:"request" json:"request"`

	// Status is the final session status.
	Status SessionStatus `yaml:"status" json:"status"`
	Error  string        `yaml:"error,omitempty" json:"error,omitempty"`

	TradeResult TradeResult `yaml:"trade_result" json:"trade_result"`
	TradePnl    TradePnl    `yaml:"trade_pnl" json:"trade_pnl"`

	// FinalBalance is empty when the server never reported a balance.
	FinalBalance string `yaml:"final_balance" json:"final_balance"`

	NumberOfCandles int `yaml:"number_of_candles" json:"number_of_candles"`
	NumberOfMarkers int `yaml:"number_of_markers" json:"number_of_markers"`
	Reconnects      int `yaml:"reconnects" json:"reconnects"`
	DecodeErrors    int `yaml:"decode_errors" json:"decode_errors"`

	CandlesFilePath string `yaml:"candles_file_path" json:"candles_file_path"`
	MarkersFilePath string `yaml:"markers_file_path" json:"markers_file_path"`
	LedgerFilePath  string `yaml:"ledger_file_path" json:"ledger_file_path"`
}

// TradeRequestSummary is the flattened trade request stored in a summary.
type TradeRequestSummary struct {
	Symbol   string  `yaml:"symbol" json:"symbol"`
	Amount   float64 `yaml:"amount" json:"amount"`
	Currency string  `yaml:"currency" json:"currency"`
	Duration string  `yaml:"duration" json:"duration"`
}

// NewSessionSummary creates a summary with zeroed statistics for the given run.
func NewSessionSummary(runID string, req TradeRequest, start time.Time) SessionSummary {
	return SessionSummary{
		ID:           runID,
		SessionID:    "",
		Date:         start.Format("2006-01-02"),
		SessionStart: start,
		SessionEnd:   time.Time{},
		Request: TradeRequestSummary{
			Symbol:   req.Symbol,
			Amount:   req.Amount,
			Currency: req.Currency,
			Duration: req.Duration,
		},
		Status: SessionStatusIdle,
		Error:  "",
		TradeResult: TradeResult{
			NumberOfTrades:        0,
			NumberOfBuys:          0,
			NumberOfSells:         0,
			NumberOfWinningTrades: 0,
			NumberOfLosingTrades:  0,
			WinRate:               0,
		},
		TradePnl: TradePnl{
			RealizedPnL:   decimal.Zero,
			MaximumLoss:   decimal.Zero,
			MaximumProfit: decimal.Zero,
		},
		FinalBalance:    "",
		NumberOfCandles: 0,
		NumberOfMarkers: 0,
		Reconnects:      0,
		DecodeErrors:    0,
		CandlesFilePath: "",
		MarkersFilePath: "",
		LedgerFilePath:  "",
	}
}

// WriteSessionSummary writes a session summary to a YAML file.
func WriteSessionSummary(path string, summary SessionSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal session summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session summary to file: %w", err)
	}

	return nil
}

// ReadSessionSummary reads a session summary from a YAML file.
func ReadSessionSummary(path string) (SessionSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("failed to read session summary file: %w", err)
	}

	var summary SessionSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return SessionSummary{}, fmt.Errorf("failed to unmarshal session summary: %w", err)
	}

	return summary, nil
}
