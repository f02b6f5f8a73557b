package engine

import (
	"sort"

	"github.com/almoxops/replen/internal/domain"
)

// Assemble joins catalog items with classified snapshots into the final
// report rows. Join semantics are full-outer on item ID: every catalog
// item appears even with zero activity, and every ledger item appears
// even when absent from the catalog. Rows come back ordered by item ID
// so identical inputs always produce identical output; callers re-sort
// for their views.
func Assemble(items []domain.Item, rows map[string]domain.ReportRow, p Params) ([]domain.ReportRow, int, int) {
	catalog := make(map[string]domain.Item, len(items))
	for _, it := range items {
		catalog[it.ItemID] = it
	}

	out := make([]domain.ReportRow, 0, len(catalog)+len(rows))
	seen := make(map[string]bool, len(catalog)+len(rows))
	ledgerOnly, catalogOnly := 0, 0

	for id, row := range rows {
		if it, ok := catalog[id]; ok {
			row.Name = it.Name
			row.Description = it.Description
			row.InCatalog = true
		} else {
			ledgerOnly++
		}
		out = append(out, row)
		seen[id] = true
	}

	for id, it := range catalog {
		if seen[id] {
			continue
		}
		catalogOnly++
		out = append(out, fillRow(it, p))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })

	return out, ledgerOnly, catalogOnly
}

// fillRow builds the zero-activity row for a catalog item with no
// ledger movements: balance and rate are zero, the tier is the mode
// default, and the horizon pairs come from the calculator so the table
// shape stays uniform (under the fixed-point strategy that still yields
// the static threshold).
func fillRow(it domain.Item, p Params) domain.ReportRow {
	zero := domain.ItemSnapshot{
		ItemID:       it.ItemID,
		CoverageDays: domain.InfiniteCoverage(),
	}

	return domain.ReportRow{
		ItemID:       it.ItemID,
		Name:         it.Name,
		Description:  it.Description,
		InCatalog:    true,
		CoverageDays: zero.CoverageDays,
		Tier:         fillTier(p.Mode),
		Horizons:     Requirements(zero, p.Horizons, p.strategy(), p.ReorderPoints),
	}
}
