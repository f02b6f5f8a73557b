package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/almoxops/replen/internal/domain"
)

// ReadLedgerXLSX parses the first sheet of an XLSX workbook as a
// movement ledger. The sheet goes through the same header detection and
// row cleaning as the CSV path.
func ReadLedgerXLSX(path string, opts Options) (*LedgerResult, error) {
	buf, err := sheetAsCSV(path)
	if err != nil {
		return nil, err
	}
	return ReadLedgerCSV(buf, opts)
}

// ReadCatalogXLSX parses the first sheet of an XLSX workbook as an item
// catalog.
func ReadCatalogXLSX(path string) ([]domain.Item, error) {
	buf, err := sheetAsCSV(path)
	if err != nil {
		return nil, err
	}
	return ReadCatalogCSV(buf)
}

// sheetAsCSV flattens the first sheet into CSV in memory so both file
// formats share one parser.
func sheetAsCSV(path string) (*bytes.Buffer, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	width := 0
	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if len(record) > width {
			width = len(record)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, record := range records {
		// excelize trims trailing empty cells per row; pad so every
		// record has the header's width.
		for len(record) < width {
			record = append(record, "")
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to buffer row from %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to buffer sheet %s: %w", path, err)
	}

	return &buf, nil
}
