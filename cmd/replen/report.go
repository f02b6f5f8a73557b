package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/almoxops/replen/internal/cache"
	"github.com/almoxops/replen/internal/config"
	"github.com/almoxops/replen/internal/engine"
	"github.com/almoxops/replen/internal/export"
	"github.com/almoxops/replen/internal/ingest"
	"github.com/almoxops/replen/internal/repository"
	"github.com/almoxops/replen/internal/service"
	"github.com/almoxops/replen/pkg/logger"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate a replenishment report from ledger and catalog files",
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
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file; stdout when omitted",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: csv or xlsx (order workbook)",
				Value: "csv",
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Horizon in days for the xlsx order workbook",
				Value: 15,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Classifier mode: demand, fuzzy or fixed_point",
			},
			&cli.IntSliceFlag{
				Name:  "horizons",
				Usage: "Coverage horizons in days",
			},
			&cli.IntFlag{
				Name:  "trailing-days",
				Usage: "Restrict history to a trailing window of this many days",
			},
			&cli.StringFlag{
				Name:  "next-order-date",
				Usage: "Next order date (YYYY-MM-DD) for the shortfall column",
			},
			&cli.Float64Flag{
				Name:  "reorder-point",
				Usage: "Default reorder point for fixed_point mode",
			},
			&cli.Float64Flag{
				Name:  "safety-margin",
				Usage: "Safety margin above the reorder point for fixed_point mode",
			},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	params, err := reportParams(c, cfg)
	if err != nil {
		return err
	}

	movements := repository.FileMovementSource{
		Path:    c.String("ledger"),
		Options: ingest.Options{ExcludeDates: cfg.Replen.ExcludeDates},
	}
	catalog := repository.FileCatalogSource{Path: c.String("items")}

	svc := service.NewReportService(movements, catalog, cache.NewNoopReportCache())
	report, err := svc.Report(c.Context, params)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	switch c.String("format") {
	case "csv":
		if err := export.WriteReportCSV(out, report); err != nil {
			return err
		}
	case "xlsx":
		if err := export.WriteOrderXLSX(out, report, c.Int("horizon"), ""); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q, expected csv or xlsx", c.String("format"))
	}

	logger.Log.Info().
		Int("rows", len(report.Rows)).
		Int("malformed_timestamps", report.Diagnostics.MalformedTimestamps).
		Msg("report written")

	return nil
}

func reportParams(c *cli.Context, cfg *config.Config) (engine.Params, error) {
	params := cfg.EngineParams()

	if mode := c.String("mode"); mode != "" {
		params.Mode = engine.ClassifierMode(mode)
	}
	if horizons := c.IntSlice("horizons"); len(horizons) > 0 {
		params.Horizons = horizons
	}
	if c.IsSet("trailing-days") {
		params.Window.TrailingDays = c.Int("trailing-days")
	}
	if c.IsSet("reorder-point") {
		params.ReorderPoints.Default = c.Float64("reorder-point")
	}
	if c.IsSet("safety-margin") {
		params.SafetyMargin = c.Float64("safety-margin")
	}

	nextOrder, err := parseDateFlag(c.String("next-order-date"))
	if err != nil {
		return params, fmt.Errorf("invalid next-order-date: %w", err)
	}
	params.NextOrderDate = nextOrder

	return params, nil
}
