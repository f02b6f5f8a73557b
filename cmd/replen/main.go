package main

import (
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/almoxops/replen/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "replen",
		Usage: "Inventory replenishment recommendations from a movement ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, release)",
				Value:   "release",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			ingestCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func parseDateFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
