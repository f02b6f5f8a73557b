package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almoxops/replen/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func mv(id string, n int, qty float64) domain.MovementRecord {
	ts := day(n)
	return domain.MovementRecord{ItemID: id, Timestamp: &ts, Quantity: qty}
}

func badMv(id string, qty float64) domain.MovementRecord {
	return domain.MovementRecord{ItemID: id, Quantity: qty}
}

func TestAggregateBalanceAndConsumption(t *testing.T) {
	movements := []domain.MovementRecord{
		mv("X", 0, 100),
		mv("X", 1, -10),
		mv("X", 2, -10),
	}

	accums, stats := Aggregate(movements, Window{})
	require.Contains(t, accums, "X")

	acc := accums["X"]
	assert.Equal(t, 80.0, acc.CurrentBalance)
	assert.Equal(t, 20.0, acc.ConsumptionTotal)
	assert.Equal(t, 2, acc.ObservedDays)
	assert.Equal(t, 3, acc.RecordCount)
	assert.Zero(t, stats.MalformedTimestamps)
}

func TestAggregateObservedDaysFloor(t *testing.T) {
	// A single-day history must not produce a zero divisor downstream.
	accums, _ := Aggregate([]domain.MovementRecord{mv("A", 0, -5)}, Window{})
	assert.Equal(t, 1, accums["A"].ObservedDays)
}

func TestAggregateMalformedTimestamps(t *testing.T) {
	movements := []domain.MovementRecord{
		mv("A", 0, 50),
		badMv("A", -8),
		badMv("B", 3),
	}

	accums, stats := Aggregate(movements, Window{})

	assert.Equal(t, 2, stats.MalformedTimestamps)
	// The balance keeps unparseable rows; consumption does not.
	assert.Equal(t, 42.0, accums["A"].CurrentBalance)
	assert.Equal(t, 0.0, accums["A"].ConsumptionTotal)
	// An item whose only row is unparseable still gets a balance.
	assert.Equal(t, 3.0, accums["B"].CurrentBalance)
	assert.Equal(t, 0, accums["B"].RecordCount)
}

func TestAggregateExplicitWindow(t *testing.T) {
	movements := []domain.MovementRecord{
		mv("A", 0, 100),
		mv("A", 10, -20),
		mv("A", 40, -30), // outside
	}

	start, end := day(0), day(20)
	accums, _ := Aggregate(movements, Window{Start: &start, End: &end})

	acc := accums["A"]
	assert.Equal(t, 80.0, acc.CurrentBalance)
	assert.Equal(t, 20.0, acc.ConsumptionTotal)
	assert.Equal(t, 10, acc.ObservedDays)
}

func TestAggregateTrailingWindowAnchorsAtLatest(t *testing.T) {
	movements := []domain.MovementRecord{
		mv("A", 0, -100), // outside the trailing window
		mv("A", 28, -5),
		mv("A", 30, -5),
	}

	accums, _ := Aggregate(movements, Window{TrailingDays: 7})

	acc := accums["A"]
	assert.Equal(t, -10.0, acc.CurrentBalance)
	assert.Equal(t, 10.0, acc.ConsumptionTotal)
	assert.Equal(t, 2, acc.RecordCount)
}

func TestAggregateItemWithoutMovementsAbsent(t *testing.T) {
	accums, _ := Aggregate([]domain.MovementRecord{mv("A", 0, 1)}, Window{})
	assert.NotContains(t, accums, "B")
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	movements := []domain.MovementRecord{mv("A", 0, 5), badMv("A", -1)}
	before := make([]domain.MovementRecord, len(movements))
	copy(before, movements)

	Aggregate(movements, Window{TrailingDays: 30})

	assert.Equal(t, before, movements)
}
