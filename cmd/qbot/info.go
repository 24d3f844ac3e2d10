package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/internal/config"
	"github.com/joshua1code/Q-bot-FD/internal/report"
	"github.com/joshua1code/Q-bot-FD/internal/version"
	"github.com/urfave/cli/v3"
)

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "symbols",
		Usage: "List the tradable symbols",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			symbols, err := a.client.ListSymbols(ctx)
			if err != nil {
				return err
			}

			for _, symbol := range symbols {
				fmt.Fprintln(a.out, symbol)
			}

			return nil
		},
	}
}

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Show the account balance",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			balance, err := a.client.Account(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Balance: %s\n", balance)

			return nil
		},
	}
}

func analysisCommand() *cli.Command {
	return &cli.Command{
		Name:  "analysis",
		Usage: "Show the server side analysis of the latest session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			analysis, err := a.client.Analysis(ctx)
			if err != nil {
				return err
			}

			if analysis.Summary != "" {
				fmt.Fprintln(a.out, analysis.Summary)
			}

			keys := make([]string, 0, len(analysis.Details))
			for key := range analysis.Details {
				keys = append(keys, key)
			}

			sort.Strings(keys)

			for _, key := range keys {
				fmt.Fprintf(a.out, "  %s: %v\n", key, analysis.Details[key])
			}

			return nil
		},
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Print the server's current view of the running session as JSON",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			snapshot, err := a.client.LiveSnapshot(ctx)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}

			fmt.Fprintln(a.out, string(data))

			return nil
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "reports",
		Usage:     "List the session reports written by trade --report",
		ArgsUsage: "[date]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			out := writer(cmd)

			dates := []string{cmd.Args().First()}
			if dates[0] == "" {
				if dates, err = report.ListDates(cfg.ReportDir); err != nil {
					return err
				}
			}

			for _, date := range dates {
				runs, err := report.ListRuns(cfg.ReportDir, date)
				if err != nil {
					return err
				}

				for _, run := range runs {
					summary, err := report.ReadSummary(filepath.Join(cfg.ReportDir, date, run, report.SummaryFileName))
					if err != nil {
						fmt.Fprintf(out, "%s/%s: no summary\n", date, run)

						continue
					}

					fmt.Fprintf(out, "%s/%s: %s %s %s, %d trades, pnl %s, balance %s\n",
						date, run,
						summary.Request.Symbol,
						summary.Status,
						summary.SessionID,
						summary.TradeResult.NumberOfTrades,
						summary.TradePnl.RealizedPnL.StringFixed(2),
						summary.FinalBalance,
					)
				}
			}

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the config file",
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.Schema()
			if err != nil {
				return err
			}

			fmt.Fprintln(writer(cmd), schema)

			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the client version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(writer(cmd), version.UserAgent())

			return nil
		},
	}
}
