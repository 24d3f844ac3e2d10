package main

import (
	"io"
	"os"

	"github.com/joshua1code/Q-bot-FD/internal/api"
	"github.com/joshua1code/Q-bot-FD/internal/config"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/urfave/cli/v3"
)

// app bundles what every command needs.
type app struct {
	cfg    config.Config
	log    *logger.Logger
	client *api.Client
	out    io.Writer
}

func loadApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	var log *logger.Logger
	if cmd.Bool("verbose") {
		log, err = logger.NewDevelopmentLogger()
	} else {
		log, err = logger.NewLogger()
	}

	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.API(), log),
		out:    writer(cmd),
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}

	return os.Stdout
}
