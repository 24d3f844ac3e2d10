// Command watch is a terminal dashboard for one live trading session.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joshua1code/Q-bot-FD/internal/api"
	"github.com/joshua1code/Q-bot-FD/internal/config"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/stream"
	"github.com/urfave/cli/v3"
)

func main() {
	//nolint:exhaustruct
	app := &cli.Command{
		Name:  "watch",
		Usage: "Start a trading session and follow it live",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("QBOT_CONFIG"),
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	// Log output would corrupt the alternate screen.
	log := logger.NewNopLogger()
	client := api.NewClient(cfg.API(), log)

	newSession := func() *session.Session {
		return session.New(cfg.Session(), client, stream.NewManager(cfg.Stream(), log), log)
	}

	p := tea.NewProgram(NewModel(client, newSession), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}

	return nil
}
