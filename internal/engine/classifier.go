package engine

import (
	"math"

	"github.com/almoxops/replen/internal/domain"
)

// Classify assigns a criticality tier to a snapshot under the configured
// mode. It is a pure function of the snapshot and parameters; boundary
// values resolve to the lower-severity branch, except the explicit
// non-positive balance check in demand mode.
func Classify(snap domain.ItemSnapshot, p Params) domain.Tier {
	switch p.Mode {
	case ModeFuzzy:
		return classifyFuzzy(snap, p)
	case ModeFixedPoint:
		return classifyFixedPoint(snap, p)
	default:
		return classifyDemand(snap, p)
	}
}

func classifyDemand(snap domain.ItemSnapshot, p Params) domain.Tier {
	neededTarget := math.Round(snap.DailyRate * float64(p.targetHorizon()))
	if snap.CurrentBalance <= 0 || snap.CurrentBalance < neededTarget {
		return domain.TierCritical
	}
	if snap.CurrentBalance < snap.DailyRate*p.WarningDays {
		return domain.TierWarning
	}
	return domain.TierOk
}

func classifyFuzzy(snap domain.ItemSnapshot, p Params) domain.Tier {
	if snap.RecordCount < p.MinHistoryCount {
		return domain.TierInsufficientData
	}

	short := snap.CoverageDays.Below(p.CriticalCoverageDays)
	unstable := snap.HasVariability && snap.CoefficientVar > p.HighVariabilityPct

	switch {
	case short && unstable:
		return domain.TierCriticalUnstable
	case short:
		return domain.TierCritical
	case unstable:
		return domain.TierUnstable
	default:
		return domain.TierOk
	}
}

func classifyFixedPoint(snap domain.ItemSnapshot, p Params) domain.Tier {
	point := reorderPoint(snap, p)
	if snap.CurrentBalance < point {
		return domain.TierCritical
	}
	if snap.CurrentBalance < point+p.SafetyMargin {
		return domain.TierWarning
	}
	return domain.TierOk
}

// reorderPoint resolves the fixed-point threshold: per-item override,
// then the configured default, then a demand-derived point inflated by
// the safety buffer percentage.
func reorderPoint(snap domain.ItemSnapshot, p Params) float64 {
	if v, ok := p.ReorderPoints.Points[snap.ItemID]; ok {
		return v
	}
	if p.ReorderPoints.Default != 0 {
		return p.ReorderPoints.Default
	}
	base := math.Round(snap.DailyRate * float64(p.targetHorizon()))
	return math.Round(base * (1 + p.SafetyBufferPct/100))
}

// fillTier is the join-fill tier for catalog items with no ledger
// activity: such rows are never classified, only defaulted.
func fillTier(mode ClassifierMode) domain.Tier {
	if mode == ModeFuzzy {
		return domain.TierInsufficientData
	}
	return domain.TierOk
}
