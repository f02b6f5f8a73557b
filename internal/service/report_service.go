package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/almoxops/replen/internal/cache"
	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/engine"
	"github.com/almoxops/replen/internal/repository"
)

// ReportService loads the two sources, runs the engine and serves the
// report views. Views never mutate the assembled report; they copy and
// re-sort.
type ReportService struct {
	movements repository.MovementSource
	catalog   repository.CatalogSource
	reports   cache.ReportCache
}

func NewReportService(movements repository.MovementSource, catalog repository.CatalogSource, reports cache.ReportCache) *ReportService {
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	return &ReportService{
		movements: movements,
		catalog:   catalog,
		reports:   reports,
	}
}

// Report returns the recommendation table for the given parameters,
// from cache when a fresh copy exists.
func (s *ReportService) Report(ctx context.Context, params engine.Params) (*domain.Report, error) {
	eng, err := engine.New(params)
	if err != nil {
		return nil, err
	}

	if report, ok, err := s.reports.Get(ctx, params); err != nil {
		log.Warn().Err(err).Msg("report cache read failed, recomputing")
	} else if ok {
		return report, nil
	}

	movements, items, err := s.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	report := eng.Run(movements, items)

	if err := s.reports.Set(ctx, params, report); err != nil {
		log.Warn().Err(err).Msg("report cache write failed")
	}

	log.Info().
		Int("rows", len(report.Rows)).
		Int("malformed_timestamps", report.Diagnostics.MalformedTimestamps).
		Int("ledger_only", report.Diagnostics.LedgerOnlyItems).
		Int("catalog_only", report.Diagnostics.CatalogOnlyItems).
		Msg("report generated")

	return report, nil
}

// Alerts returns only the rows whose tier needs attention, most starved
// coverage first.
func (s *ReportService) Alerts(ctx context.Context, params engine.Params) ([]domain.ReportRow, error) {
	report, err := s.Report(ctx, params)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.ReportRow, 0)
	for _, row := range report.Rows {
		if row.Tier.NeedsAttention() {
			alerts = append(alerts, row)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return coverageLess(alerts[i].CoverageDays, alerts[j].CoverageDays)
	})

	return alerts, nil
}

// Rankings returns the top consumers by daily rate.
func (s *ReportService) Rankings(ctx context.Context, params engine.Params, limit int) ([]domain.ReportRow, error) {
	report, err := s.Report(ctx, params)
	if err != nil {
		return nil, err
	}

	ranked := append([]domain.ReportRow(nil), report.Rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DailyRate > ranked[j].DailyRate
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	return ranked, nil
}

// History rolls up the raw ledger per item: movement counts and
// receipt/issue totals over the whole history, independent of any
// evaluation window.
func (s *ReportService) History(ctx context.Context) ([]domain.MovementSummary, error) {
	movements, items, err := s.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ItemID] = it.Name
	}

	byItem := make(map[string]*domain.MovementSummary)
	for _, m := range movements {
		sum, ok := byItem[m.ItemID]
		if !ok {
			sum = &domain.MovementSummary{ItemID: m.ItemID, Name: names[m.ItemID]}
			byItem[m.ItemID] = sum
		}
		sum.MovementCount++
		if m.Quantity > 0 {
			sum.ReceiptTotal += m.Quantity
		} else {
			sum.IssueTotal += -m.Quantity
		}
	}

	summaries := make([]domain.MovementSummary, 0, len(byItem))
	for _, sum := range byItem {
		summaries = append(summaries, *sum)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].IssueTotal != summaries[j].IssueTotal {
			return summaries[i].IssueTotal > summaries[j].IssueTotal
		}
		return summaries[i].ItemID < summaries[j].ItemID
	})

	return summaries, nil
}

// Invalidate drops every cached report, for use after an ingest.
func (s *ReportService) Invalidate(ctx context.Context) error {
	return s.reports.InvalidateAll(ctx)
}

// loadSources pulls the ledger and the catalog concurrently.
func (s *ReportService) loadSources(ctx context.Context) ([]domain.MovementRecord, []domain.Item, error) {
	var (
		movements []domain.MovementRecord
		items     []domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movements, err = s.movements.Movements(gctx)
		if err != nil {
			return fmt.Errorf("failed to load movement ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.catalog.Items(gctx)
		if err != nil {
			return fmt.Errorf("failed to load item catalog: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return movements, items, nil
}

// coverageLess orders finite coverage before infinite, then ascending.
func coverageLess(a, b domain.Coverage) bool {
	if a.Infinite {
		return false
	}
	if b.Infinite {
		return true
	}
	return a.Days < b.Days
}
