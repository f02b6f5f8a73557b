package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/almoxops/replen/internal/domain"
)

// WriteReportCSV writes the full replenishment report, one row per
// item, with a needed/order column pair per horizon. Horizons come from
// the report rows themselves so the header always matches the data.
func WriteReportCSV(w io.Writer, report *domain.Report) error {
	cw := csv.NewWriter(w)

	horizons := reportHorizons(report)
	header := []string{
		"item_id", "name", "in_catalog", "current_balance",
		"daily_rate", "coverage_days", "variability_pct", "tier",
	}
	for _, h := range horizons {
		header = append(header,
			fmt.Sprintf("needed_%dd", h),
			fmt.Sprintf("order_%dd", h),
		)
	}
	header = append(header, "shortfall")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.ItemID,
			row.Name,
			strconv.FormatBool(row.InCatalog),
			formatQty(row.CurrentBalance),
			strconv.FormatFloat(row.DailyRate, 'f', 4, 64),
			coverageField(row.CoverageDays),
			variabilityField(row),
			string(row.Tier),
		}
		byHorizon := make(map[int]domain.HorizonRequirement, len(row.Horizons))
		for _, req := range row.Horizons {
			byHorizon[req.HorizonDays] = req
		}
		for _, h := range horizons {
			req := byHorizon[h]
			record = append(record, formatQty(req.NeededQuantity), formatQty(req.QuantityToOrder))
		}
		if row.HasShortfall {
			record = append(record, formatQty(row.Shortfall))
		} else {
			record = append(record, "")
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", row.ItemID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report csv: %w", err)
	}
	return nil
}

func reportHorizons(report *domain.Report) []int {
	for _, row := range report.Rows {
		horizons := make([]int, 0, len(row.Horizons))
		for _, req := range row.Horizons {
			horizons = append(horizons, req.HorizonDays)
		}
		return horizons
	}
	return nil
}

func coverageField(c domain.Coverage) string {
	if c.Infinite {
		return ""
	}
	return strconv.FormatFloat(c.Days, 'f', 1, 64)
}

func variabilityField(row domain.ReportRow) string {
	if !row.HasVariability {
		return ""
	}
	return strconv.FormatFloat(row.CoefficientVar, 'f', 1, 64)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
