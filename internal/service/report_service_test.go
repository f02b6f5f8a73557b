package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/engine"
)

type fakeMovements struct {
	movements []domain.MovementRecord
	err       error
	calls     int
}

func (f *fakeMovements) Movements(ctx context.Context) ([]domain.MovementRecord, error) {
	f.calls++
	return f.movements, f.err
}

type fakeCatalog struct {
	items []domain.Item
	err   error
}

func (f *fakeCatalog) Items(ctx context.Context) ([]domain.Item, error) {
	return f.items, f.err
}

func ts(day int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return &t
}

func testSources() (*fakeMovements, *fakeCatalog) {
	movements := &fakeMovements{movements: []domain.MovementRecord{
		{ItemID: "A1", Timestamp: ts(0), Quantity: 100},
		{ItemID: "A1", Timestamp: ts(5), Quantity: -80},
		{ItemID: "B2", Timestamp: ts(0), Quantity: 500},
		{ItemID: "B2", Timestamp: ts(10), Quantity: -10},
	}}
	catalog := &fakeCatalog{items: []domain.Item{
		{ItemID: "A1", Name: "Latex gloves"},
		{ItemID: "B2", Name: "Syringe 5ml"},
		{ItemID: "C3", Name: "Gauze roll"},
	}}
	return movements, catalog
}

func TestReportServiceReport(t *testing.T) {
	movements, catalog := testSources()
	svc := NewReportService(movements, catalog, nil)

	report, err := svc.Report(context.Background(), engine.DefaultParams())
	require.NoError(t, err)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "A1", report.Rows[0].ItemID)
	assert.Equal(t, 1, report.Diagnostics.CatalogOnlyItems)
}

func TestReportServiceRejectsInvalidParams(t *testing.T) {
	movements, catalog := testSources()
	svc := NewReportService(movements, catalog, nil)

	params := engine.DefaultParams()
	params.Horizons = nil
	_, err := svc.Report(context.Background(), params)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
	// Sources are never touched when configuration is invalid.
	assert.Zero(t, movements.calls)
}

func TestReportServiceSourceError(t *testing.T) {
	movements, catalog := testSources()
	movements.err = errors.New("ledger unavailable")
	svc := NewReportService(movements, catalog, nil)

	_, err := svc.Report(context.Background(), engine.DefaultParams())
	assert.ErrorContains(t, err, "ledger unavailable")
}

func TestReportServiceAlerts(t *testing.T) {
	movements, catalog := testSources()
	svc := NewReportService(movements, catalog, nil)

	alerts, err := svc.Alerts(context.Background(), engine.DefaultParams())
	require.NoError(t, err)

	// A1 burns 16/day on a balance of 20; B2 and C3 are comfortable.
	require.Len(t, alerts, 1)
	assert.Equal(t, "A1", alerts[0].ItemID)
	assert.True(t, alerts[0].Tier.NeedsAttention())
}

func TestReportServiceRankings(t *testing.T) {
	movements, catalog := testSources()
	svc := NewReportService(movements, catalog, nil)

	ranked, err := svc.Rankings(context.Background(), engine.DefaultParams(), 2)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "A1", ranked[0].ItemID)
	assert.GreaterOrEqual(t, ranked[0].DailyRate, ranked[1].DailyRate)
}

func TestReportServiceHistory(t *testing.T) {
	movements, catalog := testSources()
	svc := NewReportService(movements, catalog, nil)

	summaries, err := svc.History(context.Background())
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "A1", summaries[0].ItemID)
	assert.Equal(t, 2, summaries[0].MovementCount)
	assert.Equal(t, 100.0, summaries[0].ReceiptTotal)
	assert.Equal(t, 80.0, summaries[0].IssueTotal)
	assert.Equal(t, "Latex gloves", summaries[0].Name)
}
