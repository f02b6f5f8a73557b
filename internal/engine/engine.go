package engine

import (
	"time"

	"github.com/almoxops/replen/internal/domain"
)

// Engine runs the full replenishment pipeline: aggregate the ledger,
// estimate rates, project horizon requirements, classify and assemble.
// It holds no state between runs; given identical inputs the output is
// identical, and the input slices are never mutated.
type Engine struct {
	params Params
}

// New validates the parameters and returns a ready engine. Invalid
// configuration is the one error class that refuses to produce a report.
func New(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// Params returns the configuration the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Run computes the recommendation report for one snapshot of the two
// sources.
func (e *Engine) Run(movements []domain.MovementRecord, items []domain.Item) *domain.Report {
	p := e.params

	accums, stats := Aggregate(movements, p.Window)

	daysUntil, hasOrderDate := p.daysUntilOrder()
	strategy := p.strategy()

	zeroRate := 0
	rows := make(map[string]domain.ReportRow, len(accums))
	for id, acc := range accums {
		snap := EstimateRate(acc, p.MinHistoryCount)
		if snap.DailyRate == 0 {
			zeroRate++
		}

		row := domain.ReportRow{
			ItemID:         id,
			CurrentBalance: snap.CurrentBalance,
			DailyRate:      snap.DailyRate,
			CoverageDays:   snap.CoverageDays,
			CoefficientVar: snap.CoefficientVar,
			HasVariability: snap.HasVariability,
			Tier:           Classify(snap, p),
			Horizons:       Requirements(snap, p.Horizons, strategy, p.ReorderPoints),
		}
		if hasOrderDate {
			row.Shortfall = Shortfall(snap, daysUntil)
			row.HasShortfall = true
		}
		rows[id] = row
	}

	assembled, ledgerOnly, catalogOnly := Assemble(items, rows, p)

	return &domain.Report{
		Rows: assembled,
		Diagnostics: domain.Diagnostics{
			MalformedTimestamps: stats.MalformedTimestamps,
			LedgerOnlyItems:     ledgerOnly,
			CatalogOnlyItems:    catalogOnly,
			ZeroRateItems:       zeroRate,
		},
		GeneratedAt: time.Now().UTC(),
	}
}
