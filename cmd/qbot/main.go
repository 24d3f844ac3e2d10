package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joshua1code/Q-bot-FD/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "qbot",
		Usage:   "Run and inspect Q-bot trading sessions",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("QBOT_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable development logging",
			},
		},
		Commands: []*cli.Command{
			tradeCommand(),
			symbolsCommand(),
			accountCommand(),
			analysisCommand(),
			snapshotCommand(),
			reportCommand(),
			schemaCommand(),
			versionCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
