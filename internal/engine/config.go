package engine

import (
	"errors"
	"fmt"
	"time"
)

// ClassifierMode selects which rule set assigns criticality tiers.
type ClassifierMode string

const (
	// ModeDemand classifies against demand projected to the target
	// horizon: critical on non-positive or below-need balance, warning
	// under the warning-days cushion.
	ModeDemand ClassifierMode = "demand"
	// ModeFuzzy classifies on the two axes of coverage days and
	// consumption variability, with an insufficient-data floor.
	ModeFuzzy ClassifierMode = "fuzzy"
	// ModeFixedPoint classifies against a static per-item reorder point
	// plus safety margin.
	ModeFixedPoint ClassifierMode = "fixed_point"
)

// ErrInvalidConfig marks configuration errors that must abort the run
// before any report is produced.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Window bounds the slice of ledger history the aggregator considers.
// Zero value means the full range of observed timestamps. TrailingDays
// takes a trailing window ending at the latest observed timestamp and is
// ignored when explicit bounds are set.
type Window struct {
	Start        *time.Time
	End          *time.Time
	TrailingDays int
}

// Bounded reports whether the window restricts history at all.
func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil || w.TrailingDays > 0
}

// ReorderPointTable is the injectable lookup for the fixed reorder-point
// strategy: per-item configured thresholds with a default fallback.
type ReorderPointTable struct {
	Points  map[string]float64
	Default float64
}

// Lookup returns the reorder point for an item, falling back to the
// table default when no override exists.
func (t ReorderPointTable) Lookup(itemID string) float64 {
	if v, ok := t.Points[itemID]; ok {
		return v
	}
	return t.Default
}

// Params is the caller-supplied configuration for one engine run.
type Params struct {
	Window   Window
	Horizons []int

	// NextOrderDate, when set, derives the distinguished "days until
	// next order" horizon used for the signed shortfall and as the
	// demand-mode target horizon.
	NextOrderDate *time.Time
	// Now anchors NextOrderDate math; defaults to time.Now().
	Now time.Time

	Mode ClassifierMode

	// Demand mode.
	// TargetHorizonDays is the horizon the critical check projects to.
	// Derived from NextOrderDate when zero and a date is set.
	TargetHorizonDays int
	WarningDays       float64

	// Fuzzy mode.
	CriticalCoverageDays float64
	HighVariabilityPct   float64
	MinHistoryCount      int

	// Fixed reorder-point mode.
	ReorderPoints ReorderPointTable
	SafetyMargin  float64

	// SafetyBufferPct inflates the fixed-point default as a percentage
	// of lead-time demand when no explicit default is configured.
	SafetyBufferPct float64
}

// DefaultParams returns the conventional configuration: full history,
// the standard coverage horizons and demand-based classification.
func DefaultParams() Params {
	return Params{
		Horizons:             []int{7, 15, 30, 45},
		Mode:                 ModeDemand,
		WarningDays:          15,
		CriticalCoverageDays: 7,
		HighVariabilityPct:   100,
		MinHistoryCount:      5,
	}
}

// Validate enforces the hard configuration invariants. Silently clamping
// any of these would misrepresent reorder quantities, so a failure here
// aborts the run.
func (p Params) Validate() error {
	if len(p.Horizons) == 0 {
		return fmt.Errorf("%w: at least one horizon is required", ErrInvalidConfig)
	}
	for _, h := range p.Horizons {
		if h <= 0 {
			return fmt.Errorf("%w: horizon length must be positive, got %d", ErrInvalidConfig, h)
		}
	}

	switch p.Mode {
	case ModeDemand, ModeFuzzy, ModeFixedPoint:
	default:
		return fmt.Errorf("%w: unknown classifier mode %q", ErrInvalidConfig, p.Mode)
	}

	if p.SafetyBufferPct < 0 {
		return fmt.Errorf("%w: safety buffer percentage must not be negative, got %v", ErrInvalidConfig, p.SafetyBufferPct)
	}
	if p.SafetyMargin < 0 {
		return fmt.Errorf("%w: safety margin must not be negative, got %v", ErrInvalidConfig, p.SafetyMargin)
	}
	if p.MinHistoryCount < 0 {
		return fmt.Errorf("%w: minimum history count must not be negative, got %d", ErrInvalidConfig, p.MinHistoryCount)
	}
	if p.Window.TrailingDays < 0 {
		return fmt.Errorf("%w: trailing window days must not be negative, got %d", ErrInvalidConfig, p.Window.TrailingDays)
	}
	if p.Window.Start != nil && p.Window.End != nil && p.Window.End.Before(*p.Window.Start) {
		return fmt.Errorf("%w: window end precedes window start", ErrInvalidConfig)
	}

	return nil
}

// targetHorizon resolves the demand-mode target horizon: explicit
// configuration wins, then the next-order date, then the warning cushion.
func (p Params) targetHorizon() int {
	if p.TargetHorizonDays > 0 {
		return p.TargetHorizonDays
	}
	if days, ok := p.daysUntilOrder(); ok && days > 0 {
		return days
	}
	return int(p.WarningDays)
}

// strategy maps the classifier mode to the calculator strategy: the
// fixed-point mode is the only one that replaces demand projection.
func (p Params) strategy() ReorderStrategy {
	if p.Mode == ModeFixedPoint {
		return StrategyFixedPoint
	}
	return StrategyDemand
}

// daysUntilOrder returns the whole days between now and the next order
// date, when one is configured.
func (p Params) daysUntilOrder() (int, bool) {
	if p.NextOrderDate == nil {
		return 0, false
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	return int(p.NextOrderDate.Sub(now).Hours() / 24), true
}
