package domain

import "strings"

// Tier is the criticality level assigned to an item by the classifier.
type Tier string

const (
	TierOk               Tier = "ok"
	TierWarning          Tier = "warning"
	TierCritical         Tier = "critical"
	TierUnstable         Tier = "unstable"
	TierCriticalUnstable Tier = "critical_unstable"
	TierInsufficientData Tier = "insufficient_data"
)

var tierLabels = map[Tier]string{
	TierOk:               "Ok",
	TierWarning:          "Warning",
	TierCritical:         "Critical",
	TierUnstable:         "Unstable",
	TierCriticalUnstable: "Critical & Unstable",
	TierInsufficientData: "Insufficient Data",
}

// Label returns a human-readable label for a tier.
func (t Tier) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}

	return "Unknown"
}

// NeedsAttention reports whether a tier should surface in alert views.
func (t Tier) NeedsAttention() bool {
	return t != TierOk && t != TierInsufficientData
}

// ParseTier returns the tier for a given label or identifier
// (case-insensitive).
func ParseTier(s string) (Tier, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for tier, label := range tierLabels {
		if normalized == string(tier) || normalized == strings.ToLower(label) {
			return tier, true
		}
	}

	return "", false
}
