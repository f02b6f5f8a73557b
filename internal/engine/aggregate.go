package engine

import (
	"time"

	"github.com/almoxops/replen/internal/domain"
)

// ItemAccum is the per-item reduction of the movement ledger over one
// observation window.
type ItemAccum struct {
	ItemID           string
	CurrentBalance   float64
	ConsumptionTotal float64
	ObservedDays     int
	RecordCount      int

	first, last  time.Time
	issueAmounts []float64
}

// AggregateStats counts the rows the aggregation had to work around.
type AggregateStats struct {
	MalformedTimestamps int
	TotalMovements      int
}

// Aggregate reduces the ledger into per-item balances and consumption
// totals. Rows with a nil timestamp cannot be window-filtered; they are
// counted, kept in the balance and excluded from consumption and
// observed-days math. Items with no matching movements do not appear in
// the result; the assembler fills them from the catalog.
func Aggregate(movements []domain.MovementRecord, w Window) (map[string]*ItemAccum, AggregateStats) {
	stats := AggregateStats{TotalMovements: len(movements)}
	start, end := resolveWindow(movements, w)

	accums := make(map[string]*ItemAccum)
	get := func(id string) *ItemAccum {
		acc, ok := accums[id]
		if !ok {
			acc = &ItemAccum{ItemID: id}
			accums[id] = acc
		}
		return acc
	}

	for _, m := range movements {
		if m.Timestamp == nil {
			stats.MalformedTimestamps++
			// Balance keeps every row; only time-based math needs a
			// valid timestamp.
			get(m.ItemID).CurrentBalance += m.Quantity
			continue
		}

		ts := *m.Timestamp
		if !inWindow(ts, start, end) {
			continue
		}

		acc := get(m.ItemID)
		acc.CurrentBalance += m.Quantity
		acc.RecordCount++
		if m.Quantity < 0 {
			magnitude := -m.Quantity
			acc.ConsumptionTotal += magnitude
			acc.issueAmounts = append(acc.issueAmounts, magnitude)
		}

		if acc.first.IsZero() || ts.Before(acc.first) {
			acc.first = ts
		}
		if acc.last.IsZero() || ts.After(acc.last) {
			acc.last = ts
		}
	}

	for _, acc := range accums {
		acc.ObservedDays = observedDays(acc.first, acc.last)
	}

	return accums, stats
}

// observedDays is the whole-day span between the first and last valid
// movement, floored at 1 so downstream rate division never sees zero.
func observedDays(first, last time.Time) int {
	if first.IsZero() || last.IsZero() {
		return 1
	}
	days := int(last.Sub(first).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// resolveWindow turns window configuration into concrete bounds. A
// trailing window is anchored at the latest valid timestamp in the
// ledger, so reports stay reproducible for a fixed source snapshot.
func resolveWindow(movements []domain.MovementRecord, w Window) (start, end *time.Time) {
	if w.Start != nil || w.End != nil {
		return w.Start, w.End
	}
	if w.TrailingDays <= 0 {
		return nil, nil
	}

	var latest time.Time
	for _, m := range movements {
		if m.Timestamp != nil && m.Timestamp.After(latest) {
			latest = *m.Timestamp
		}
	}
	if latest.IsZero() {
		return nil, nil
	}

	from := latest.AddDate(0, 0, -w.TrailingDays)
	return &from, &latest
}

func inWindow(ts time.Time, start, end *time.Time) bool {
	if start != nil && ts.Before(*start) {
		return false
	}
	if end != nil && ts.After(*end) {
		return false
	}
	return true
}
