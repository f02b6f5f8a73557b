package engine

import (
	"math"

	"github.com/almoxops/replen/internal/domain"
)

// EstimateRate converts an aggregated item into a snapshot with its
// daily consumption rate and coverage. A zero consumption total yields a
// defined zero rate, and zero-rate coverage uses the infinite sentinel
// rather than dividing.
func EstimateRate(acc *ItemAccum, minHistoryCount int) domain.ItemSnapshot {
	snap := domain.ItemSnapshot{
		ItemID:           acc.ItemID,
		CurrentBalance:   acc.CurrentBalance,
		ConsumptionTotal: acc.ConsumptionTotal,
		ObservedDays:     acc.ObservedDays,
		RecordCount:      acc.RecordCount,
	}

	if acc.ConsumptionTotal > 0 {
		snap.DailyRate = acc.ConsumptionTotal / float64(acc.ObservedDays)
	}

	if snap.DailyRate > 0 {
		snap.CoverageDays = domain.FiniteCoverage(snap.CurrentBalance / snap.DailyRate)
	} else {
		snap.CoverageDays = domain.InfiniteCoverage()
	}

	if acc.RecordCount >= minHistoryCount && len(acc.issueAmounts) >= 2 {
		snap.Variability = stddev(acc.issueAmounts)
		snap.HasVariability = true
		if snap.DailyRate > 0 {
			snap.CoefficientVar = snap.Variability / snap.DailyRate * 100
		}
	}

	return snap
}

// stddev is the sample standard deviation of the issue magnitudes.
func stddev(values []float64) float64 {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / (n - 1))
}
