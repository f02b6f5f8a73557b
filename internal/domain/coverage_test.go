package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageBelow(t *testing.T) {
	assert.True(t, FiniteCoverage(3).Below(7))
	assert.False(t, FiniteCoverage(7).Below(7))
	assert.False(t, InfiniteCoverage().Below(1e9))
}

func TestCoverageJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(InfiniteCoverage())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = json.Marshal(FiniteCoverage(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(out))

	var c Coverage
	require.NoError(t, json.Unmarshal([]byte("null"), &c))
	assert.True(t, c.Infinite)

	require.NoError(t, json.Unmarshal([]byte("4.2"), &c))
	assert.False(t, c.Infinite)
	assert.Equal(t, 4.2, c.Days)
}

func TestTierLabelsAndParse(t *testing.T) {
	assert.Equal(t, "Critical", TierCritical.Label())
	assert.Equal(t, "Unknown", Tier("nope").Label())

	tier, ok := ParseTier("Insufficient Data")
	assert.True(t, ok)
	assert.Equal(t, TierInsufficientData, tier)

	tier, ok = ParseTier("critical_unstable")
	assert.True(t, ok)
	assert.Equal(t, TierCriticalUnstable, tier)

	_, ok = ParseTier("bogus")
	assert.False(t, ok)
}

func TestTierNeedsAttention(t *testing.T) {
	assert.False(t, TierOk.NeedsAttention())
	assert.False(t, TierInsufficientData.NeedsAttention())
	assert.True(t, TierWarning.NeedsAttention())
	assert.True(t, TierCritical.NeedsAttention())
	assert.True(t, TierUnstable.NeedsAttention())
}
