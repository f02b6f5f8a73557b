package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/almoxops/replen/internal/engine"
)

func TestParamsHashStable(t *testing.T) {
	p := engine.DefaultParams()
	assert.Equal(t, paramsHash(p), paramsHash(p))

	// Horizon order must not change the key.
	a := engine.DefaultParams()
	a.Horizons = []int{7, 15, 30}
	b := engine.DefaultParams()
	b.Horizons = []int{30, 7, 15}
	assert.Equal(t, paramsHash(a), paramsHash(b))
}

func TestParamsHashDistinguishesConfigs(t *testing.T) {
	base := engine.DefaultParams()

	fuzzy := base
	fuzzy.Mode = engine.ModeFuzzy
	assert.NotEqual(t, paramsHash(base), paramsHash(fuzzy))

	windowed := base
	windowed.Window.TrailingDays = 30
	assert.NotEqual(t, paramsHash(base), paramsHash(windowed))

	ordered := base
	d := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	ordered.NextOrderDate = &d
	assert.NotEqual(t, paramsHash(base), paramsHash(ordered))

	points := base
	points.ReorderPoints = engine.ReorderPointTable{Default: 28}
	assert.NotEqual(t, paramsHash(base), paramsHash(points))
}

func TestNoopReportCache(t *testing.T) {
	c := NewNoopReportCache()

	report, ok, err := c.Get(context.Background(), engine.DefaultParams())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, report)

	assert.NoError(t, c.Set(context.Background(), engine.DefaultParams(), nil))
	assert.NoError(t, c.InvalidateAll(context.Background()))
}
