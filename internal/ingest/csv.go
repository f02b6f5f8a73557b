package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/almoxops/replen/internal/domain"
)

// timestampLayouts are tried in order. The warehouse exports write
// day-first dates (dd/mm/yyyy), so those come before the ISO forms.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options controls ledger cleaning during the read.
type Options struct {
	// ExcludeDates drops movements on specific calendar days, for
	// deployment-specific cleanup such as reconciliation recounts. It is
	// data cleaning at the edge, not engine logic.
	ExcludeDates []time.Time
}

// LedgerResult is the parsed ledger plus the rows the reader had to
// work around.
type LedgerResult struct {
	Movements     []domain.MovementRecord
	BlankIDRows   int
	ExcludedRows  int
	MalformedRows int
}

// ReadLedgerCSV parses a movement ledger export. Expected columns (any
// order, header names normalized): item id, datetime, amount. Rows with
// an unparseable timestamp keep a nil timestamp instead of failing the
// read; rows with a blank item id are dropped and counted.
func ReadLedgerCSV(r io.Reader, opts Options) (*LedgerResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}

	idxItem := colIndex(header, "item id", "item_id", "sku")
	idxTime := colIndex(header, "datetime", "date time", "timestamp", "moved at")
	idxAmount := colIndex(header, "amount", "quantity", "qty")
	if idxItem < 0 || idxAmount < 0 {
		return nil, fmt.Errorf("ledger is missing item id or amount column (header: %v)", header)
	}

	excluded := make(map[string]bool, len(opts.ExcludeDates))
	for _, d := range opts.ExcludeDates {
		excluded[d.Format("2006-01-02")] = true
	}

	result := &LedgerResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %w", err)
		}

		itemID := strings.TrimSpace(field(record, idxItem))
		if itemID == "" {
			result.BlankIDRows++
			continue
		}

		ts := parseTimestamp(field(record, idxTime))
		if ts == nil {
			result.MalformedRows++
		} else if excluded[ts.Format("2006-01-02")] {
			result.ExcludedRows++
			continue
		}

		result.Movements = append(result.Movements, domain.MovementRecord{
			ItemID:    itemID,
			Timestamp: ts,
			Quantity:  parseAmount(field(record, idxAmount)),
		})
	}

	return result, nil
}

// ReadCatalogCSV parses the item catalog. Expected columns: item id,
// name, description, optional image.
func ReadCatalogCSV(r io.Reader) ([]domain.Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	idxItem := colIndex(header, "item id", "item_id", "sku")
	idxName := colIndex(header, "name", "product name")
	idxDesc := colIndex(header, "description")
	idxImage := colIndex(header, "image", "image ref")
	if idxItem < 0 {
		return nil, fmt.Errorf("catalog is missing item id column (header: %v)", header)
	}

	var items []domain.Item
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}

		itemID := strings.TrimSpace(field(record, idxItem))
		if itemID == "" {
			continue
		}

		items = append(items, domain.Item{
			ItemID:      itemID,
			Name:        strings.TrimSpace(field(record, idxName)),
			Description: strings.TrimSpace(field(record, idxDesc)),
			ImageRef:    strings.TrimSpace(field(record, idxImage)),
		})
	}

	return items, nil
}

// ReadLedgerFile opens and parses a ledger CSV from disk.
func ReadLedgerFile(path string, opts Options) (*LedgerResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file %s: %w", path, err)
	}
	defer f.Close()

	return ReadLedgerCSV(f, opts)
}

// ReadCatalogFile opens and parses a catalog CSV from disk.
func ReadCatalogFile(path string) ([]domain.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer f.Close()

	return ReadCatalogCSV(f)
}

func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

func parseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", "")
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

func colIndex(header []string, names ...string) int {
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}
	return -1
}
