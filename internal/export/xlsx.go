package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/almoxops/replen/internal/domain"
)

const orderSheetName = "Order"

// WriteOrderXLSX writes a purchase-order workbook for one horizon: a
// title banner, a blank spacer row, a header row and one row per item
// with a positive order quantity. Items with nothing to order are left
// out so the sheet can go straight to the supplier.
func WriteOrderXLSX(w io.Writer, report *domain.Report, horizonDays int, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), orderSheetName); err != nil {
		return fmt.Errorf("failed to name order sheet: %w", err)
	}

	if title == "" {
		title = fmt.Sprintf("MATERIAL ORDER - %d DAY HORIZON", horizonDays)
	}
	rows := [][]interface{}{
		{title},
		{},
		{"Item ID", "Name", "Current Balance", "Order Quantity"},
	}

	for _, row := range report.Rows {
		qty, ok := orderFor(row, horizonDays)
		if !ok {
			return fmt.Errorf("report has no %d-day horizon", horizonDays)
		}
		if qty <= 0 {
			continue
		}
		rows = append(rows, []interface{}{row.ItemID, row.Name, row.CurrentBalance, qty})
	}

	for i, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(orderSheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write order row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write order workbook: %w", err)
	}
	return nil
}

func orderFor(row domain.ReportRow, horizonDays int) (float64, bool) {
	for _, req := range row.Horizons {
		if req.HorizonDays == horizonDays {
			return req.QuantityToOrder, true
		}
	}
	return 0, false
}
