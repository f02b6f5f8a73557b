package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLedger = `Item ID,DateTime,Amount
A1,05/01/2024 08:30:00,100
A1,07/01/2024,-20
A1,not-a-date,-5
 B2 ,12/01/2024 14:00:00,50
,15/01/2024,10
`

func TestReadLedgerCSV(t *testing.T) {
	result, err := ReadLedgerCSV(strings.NewReader(sampleLedger), Options{})
	require.NoError(t, err)

	require.Len(t, result.Movements, 4)
	assert.Equal(t, 1, result.BlankIDRows)
	assert.Equal(t, 1, result.MalformedRows)
	assert.Equal(t, 0, result.ExcludedRows)

	first := result.Movements[0]
	assert.Equal(t, "A1", first.ItemID)
	require.NotNil(t, first.Timestamp)
	// Day-first parsing: 05/01 is January 5th, not May 1st.
	assert.Equal(t, time.January, first.Timestamp.Month())
	assert.Equal(t, 5, first.Timestamp.Day())
	assert.Equal(t, 100.0, first.Quantity)

	malformed := result.Movements[2]
	assert.Nil(t, malformed.Timestamp)
	assert.Equal(t, -5.0, malformed.Quantity)

	// Whitespace around IDs is stripped.
	assert.Equal(t, "B2", result.Movements[3].ItemID)
}

func TestReadLedgerCSVISOTimestamps(t *testing.T) {
	csv := "item_id,timestamp,qty\nA1,2024-03-10T09:00:00Z,-4\nA1,2024-03-11,-6\n"
	result, err := ReadLedgerCSV(strings.NewReader(csv), Options{})
	require.NoError(t, err)

	require.Len(t, result.Movements, 2)
	assert.Equal(t, 0, result.MalformedRows)
	assert.Equal(t, time.March, result.Movements[0].Timestamp.Month())
	assert.Equal(t, 10, result.Movements[0].Timestamp.Day())
}

func TestReadLedgerCSVExcludeDates(t *testing.T) {
	cutover := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	result, err := ReadLedgerCSV(strings.NewReader(sampleLedger), Options{
		ExcludeDates: []time.Time{cutover},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ExcludedRows)
	for _, m := range result.Movements {
		if m.Timestamp != nil {
			assert.NotEqual(t, "2024-01-07", m.Timestamp.Format("2006-01-02"))
		}
	}
}

func TestReadLedgerCSVMissingColumn(t *testing.T) {
	_, err := ReadLedgerCSV(strings.NewReader("datetime,amount\n01/01/2024,5\n"), Options{})
	assert.Error(t, err)
}

func TestReadCatalogCSV(t *testing.T) {
	csv := `Item ID,Name,Description,Image
A1,Latex gloves,Box of 100,https://img.example/a1.png
B2,Syringe 5ml,,
,Missing ID,,
`
	items, err := ReadCatalogCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "A1", items[0].ItemID)
	assert.Equal(t, "Latex gloves", items[0].Name)
	assert.Equal(t, "Box of 100", items[0].Description)
	assert.Equal(t, "https://img.example/a1.png", items[0].ImageRef)
	assert.Empty(t, items[1].ImageRef)
}

func TestParseAmountThousandSeparators(t *testing.T) {
	assert.Equal(t, 1250.0, parseAmount("1,250"))
	assert.Equal(t, -30.5, parseAmount(" -30.5 "))
	assert.Equal(t, 0.0, parseAmount(""))
}

func TestSheetClientFetchLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleLedger))
	}))
	defer srv.Close()

	client := NewSheetClient()
	result, err := client.FetchLedger(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	assert.Len(t, result.Movements, 4)
}

func TestSheetClientFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewSheetClient()
	_, err := client.FetchLedger(context.Background(), srv.URL, Options{})
	assert.Error(t, err)
}
