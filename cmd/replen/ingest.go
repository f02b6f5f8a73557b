package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/almoxops/replen/internal/config"
	"github.com/almoxops/replen/internal/ingest"
	"github.com/almoxops/replen/internal/repository"
	"github.com/almoxops/replen/internal/repository/postgres"
	"github.com/almoxops/replen/pkg/logger"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Load ledger and catalog files into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ledger",
				Usage:    "Movement ledger file (CSV or XLSX)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "items",
				Usage:    "Item catalog file (CSV or XLSX)",
				Required: true,
			},
		},
		Action: runIngest,
	}
}

func runIngest(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(c.Context, db); err != nil {
		return err
	}

	opts := ingest.Options{ExcludeDates: cfg.Replen.ExcludeDates}
	movements, err := repository.FileMovementSource{Path: c.String("ledger"), Options: opts}.Movements(c.Context)
	if err != nil {
		return err
	}
	items, err := repository.FileCatalogSource{Path: c.String("items")}.Items(c.Context)
	if err != nil {
		return err
	}

	if err := postgres.NewCatalogRepository(db).UpsertItems(c.Context, items); err != nil {
		return err
	}
	if err := postgres.NewLedgerRepository(db).ReplaceMovements(c.Context, movements); err != nil {
		return err
	}

	logger.Log.Info().
		Int("movements", len(movements)).
		Int("items", len(items)).
		Msg("ingest complete")

	return nil
}
