package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/report"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/stream"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func tradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "trade",
		Usage: "Start a trading session and follow it until it ends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to trade, e.g. BTC or AAPL",
				Required: true,
			},
			&cli.FloatFlag{
				Name:     "amount",
				Aliases:  []string{"a"},
				Usage:    "Amount committed to the session",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "currency",
				Usage: "Currency of the amount",
				Value: types.DefaultCurrency,
			},
			&cli.StringFlag{
				Name:     "duration",
				Aliases:  []string{"d"},
				Usage:    "Session duration as understood by the server, e.g. 60 or 5m",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "stop-loss",
				Usage: "Optional stop loss forwarded to the server",
			},
			&cli.FloatFlag{
				Name:  "take-profit",
				Usage: "Optional take profit forwarded to the server",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Write summary.yaml and parquet files into the report directory",
			},
		},
		Action: tradeAction,
	}
}

func requestFromFlags(cmd *cli.Command) types.TradeRequest {
	req := types.TradeRequest{
		Symbol:     cmd.String("symbol"),
		Amount:     cmd.Float("amount"),
		Currency:   cmd.String("currency"),
		Duration:   cmd.String("duration"),
		StopLoss:   optional.None[float64](),
		TakeProfit: optional.None[float64](),
	}

	if cmd.IsSet("stop-loss") {
		req.StopLoss = optional.Some(cmd.Float("stop-loss"))
	}

	if cmd.IsSet("take-profit") {
		req.TakeProfit = optional.Some(cmd.Float("take-profit"))
	}

	return req.Normalize()
}

func tradeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	req := requestFromFlags(cmd)
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		runs    *report.RunManager
		tracker *report.Tracker
	)

	if cmd.Bool("report") {
		runs = report.NewRunManager(a.log)
		if err := runs.Initialize(a.cfg.ReportDir, time.Now()); err != nil {
			return err
		}

		tracker = report.NewTracker(runs.RunID(), req, runs.SessionStart(), a.log)
	}

	manager := stream.NewManager(a.cfg.Stream(), a.log)
	sess := session.New(a.cfg.Session(), a.client, manager, a.log)
	notifications, _ := sess.Subscribe()

	fmt.Fprintf(a.out, "Starting %s session: %.2f %s for %s\n", req.Symbol, req.Amount, req.Currency, req.Duration)

	if err := sess.Start(ctx, req, printingCallbacks(a.out, tracker)); err != nil {
		_ = sess.Close()

		return err
	}

	// Close discards the handle; keep it for the summary.
	handle := sess.Snapshot().Handle

	select {
	case <-sess.Done():
	case <-ctx.Done():
		a.log.Info("Interrupted, closing session")
	}

	if err := sess.Close(); err != nil {
		a.log.Warn("Failed to close stream", zap.Error(err))
	}

	//nolint:revive // wait for queued callbacks
	for range notifications {
	}

	state := sess.Snapshot()
	state.Handle = handle
	counters := sess.Counters()
	printSummary(a.out, state, counters)

	if tracker != nil {
		summary, err := report.WriteRun(runs.RunPath(), tracker, state, counters, a.log)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Report written to %s (%d trades)\n", runs.RunPath(), summary.TradeResult.NumberOfTrades)
	}

	if state.Status == types.SessionStatusFailed {
		return errors.Newf(errors.ErrCodeConnectionClosed, "session failed: %s", state.Error)
	}

	return nil
}

func printingCallbacks(out io.Writer, tracker *report.Tracker) session.Callbacks {
	onStatus := session.OnStatusChangeCallback(func(change session.StatusChange) {
		if change.Detail != "" {
			fmt.Fprintf(out, "Status: %s -> %s: %s\n", change.From, change.To, change.Detail)

			return
		}

		fmt.Fprintf(out, "Status: %s -> %s\n", change.From, change.To)
	})
	onCandle := session.OnCandleCallback(func(candle types.Candle, appended bool) {
		if !appended {
			return
		}

		fmt.Fprintf(out, "[%s] O=%.4f H=%.4f L=%.4f C=%.4f\n",
			candle.Timestamp().Format("15:04:05"), candle.Open, candle.High, candle.Low, candle.Close)
	})
	onTrade := session.OnTradeCallback(func(trade types.TradeEvent) {
		fmt.Fprintf(out, "Trade: %s %.4f @ %.4f pnl=%.2f\n", trade.Side.Title(), trade.Amount, trade.Price, trade.PnL)

		if tracker != nil {
			tracker.RecordTrade(trade)
		}
	})
	onBalance := session.OnBalanceCallback(func(balance types.BalanceSnapshot) {
		fmt.Fprintf(out, "Balance: %s\n", balance)
	})
	onDecodeError := session.OnDecodeErrorCallback(func(err error) {
		fmt.Fprintf(out, "Dropped malformed payload: %s\n", errors.UserMessage(err))
	})

	return session.Callbacks{
		OnStatusChange: &onStatus,
		OnCandle:       &onCandle,
		OnMarker:       nil,
		OnTrade:        &onTrade,
		OnBalance:      &onBalance,
		OnDecodeError:  &onDecodeError,
	}
}

func printSummary(out io.Writer, state types.SessionState, counters session.Counters) {
	fmt.Fprintf(out, "Session %s finished: %s\n", state.Handle.ID, state.Status)

	if state.Error != "" {
		fmt.Fprintf(out, "  Error: %s\n", state.Error)
	}

	fmt.Fprintf(out, "  Candles: %d, markers: %d, ledger: %d\n", len(state.Candles), len(state.Markers), len(state.Ledger))
	fmt.Fprintf(out, "  Messages: %d, dropped: %d, reconnects: %d\n",
		counters.MessagesApplied, counters.DecodeErrors, counters.Reconnects)

	if state.Balance.IsSome() {
		fmt.Fprintf(out, "  Balance: %s\n", state.Balance.Unwrap())
	}
}
