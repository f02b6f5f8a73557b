package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/almoxops/replen/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Rows: []domain.ReportRow{
			{
				ItemID:         "A1",
				Name:           "Latex gloves",
				InCatalog:      true,
				CurrentBalance: 50,
				DailyRate:      10,
				CoverageDays:   domain.FiniteCoverage(5),
				Tier:           domain.TierCritical,
				Horizons: []domain.HorizonRequirement{
					{HorizonDays: 7, NeededQuantity: 70, QuantityToOrder: 20},
					{HorizonDays: 15, NeededQuantity: 150, QuantityToOrder: 100},
				},
			},
			{
				ItemID:         "B2",
				Name:           "Syringe 5ml",
				InCatalog:      true,
				CurrentBalance: 200,
				DailyRate:      0,
				CoverageDays:   domain.InfiniteCoverage(),
				Tier:           domain.TierOk,
				Horizons: []domain.HorizonRequirement{
					{HorizonDays: 7},
					{HorizonDays: 15},
				},
			},
		},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Contains(t, header, "needed_7d")
	assert.Contains(t, header, "order_15d")

	first := records[1]
	assert.Equal(t, "A1", first[0])
	assert.Equal(t, "critical", first[7])

	// Infinite coverage renders as an empty field, not a number.
	second := records[2]
	assert.Equal(t, "B2", second[0])
	assert.Equal(t, "", second[5])
}

func TestWriteReportCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, &domain.Report{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteOrderXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrderXLSX(&buf, sampleReport(), 7, ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(orderSheetName)
	require.NoError(t, err)

	// Banner, spacer, header, then only the item with a positive order.
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Contains(t, rows[0][0], "7 DAY")
	assert.Equal(t, []string{"Item ID", "Name", "Current Balance", "Order Quantity"}, rows[2][:4])
	assert.Equal(t, "A1", rows[3][0])
	assert.Equal(t, "20", rows[3][3])
	for _, r := range rows[3:] {
		assert.NotEqual(t, "B2", r[0])
	}
}

func TestWriteOrderXLSXUnknownHorizon(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOrderXLSX(&buf, sampleReport(), 99, "")
	assert.Error(t, err)
}
