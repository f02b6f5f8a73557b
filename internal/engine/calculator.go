package engine

import (
	"math"

	"github.com/almoxops/replen/internal/domain"
)

// ReorderStrategy decides how the required stock level for a horizon is
// derived. The two strategies are alternatives selected by the caller,
// never combined.
type ReorderStrategy string

const (
	// StrategyDemand projects need from the estimated daily rate.
	StrategyDemand ReorderStrategy = "demand"
	// StrategyFixedPoint substitutes a static per-item threshold for the
	// projected need, uniformly across all horizons.
	StrategyFixedPoint ReorderStrategy = "fixed_point"
)

// Requirements derives the needed stock level and quantity to order for
// each requested horizon. Order quantities are floored at zero.
func Requirements(snap domain.ItemSnapshot, horizons []int, strategy ReorderStrategy, table ReorderPointTable) []domain.HorizonRequirement {
	reqs := make([]domain.HorizonRequirement, 0, len(horizons))
	for _, h := range horizons {
		needed := neededQuantity(snap, h, strategy, table)
		reqs = append(reqs, domain.HorizonRequirement{
			HorizonDays:     h,
			NeededQuantity:  needed,
			QuantityToOrder: math.Max(needed-snap.CurrentBalance, 0),
		})
	}
	return reqs
}

// Shortfall is the signed gap between the need projected to the next
// order date and the current balance. Unlike order quantities it is not
// floored: a negative value means surplus.
func Shortfall(snap domain.ItemSnapshot, daysUntilOrder int) float64 {
	needed := math.Round(snap.DailyRate * float64(daysUntilOrder))
	return needed - snap.CurrentBalance
}

func neededQuantity(snap domain.ItemSnapshot, horizonDays int, strategy ReorderStrategy, table ReorderPointTable) float64 {
	if strategy == StrategyFixedPoint {
		return table.Lookup(snap.ItemID)
	}
	return math.Round(snap.DailyRate * float64(horizonDays))
}
