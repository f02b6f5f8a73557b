package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/almoxops/replen/internal/config"
	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/engine"
)

const (
	reportKeyPrefix     = "replen:report"
	reportScanBatchSize = 100
)

// ReportCache memoizes assembled reports per engine configuration. The
// engine is deterministic, so two requests with the same parameters can
// share one report until the next ingest invalidates it.
type ReportCache interface {
	Get(ctx context.Context, params engine.Params) (*domain.Report, bool, error)
	Set(ctx context.Context, params engine.Params, report *domain.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, params engine.Params) (*domain.Report, bool, error) {
	key := buildReportKey(params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, params engine.Params, report *domain.Report) error {
	key := buildReportKey(params)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) Get(ctx context.Context, params engine.Params) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) Set(ctx context.Context, params engine.Params, report *domain.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(params engine.Params) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, paramsHash(params))
}

// paramsHash folds every report-affecting parameter into a stable key.
// Keeping this exhaustive matters more than keeping it short: a missed
// field here silently serves one configuration's report to another.
func paramsHash(params engine.Params) string {
	parts := []string{
		"mode=" + string(params.Mode),
		"horizons=" + joinInts(params.Horizons),
		fmt.Sprintf("warning_days=%.2f", params.WarningDays),
		fmt.Sprintf("critical_coverage=%.2f", params.CriticalCoverageDays),
		fmt.Sprintf("high_variability=%.2f", params.HighVariabilityPct),
		fmt.Sprintf("min_history=%d", params.MinHistoryCount),
		fmt.Sprintf("target_horizon=%d", params.TargetHorizonDays),
		fmt.Sprintf("safety_margin=%.2f", params.SafetyMargin),
		fmt.Sprintf("safety_buffer=%.2f", params.SafetyBufferPct),
		fmt.Sprintf("trailing_days=%d", params.Window.TrailingDays),
	}
	if params.Window.Start != nil {
		parts = append(parts, "window_start="+params.Window.Start.UTC().Format(time.RFC3339))
	}
	if params.Window.End != nil {
		parts = append(parts, "window_end="+params.Window.End.UTC().Format(time.RFC3339))
	}
	if params.NextOrderDate != nil {
		parts = append(parts, "next_order="+params.NextOrderDate.UTC().Format(time.RFC3339))
	}
	if len(params.ReorderPoints.Points) > 0 || params.ReorderPoints.Default != 0 {
		parts = append(parts, "reorder_points="+reorderPointsHash(params.ReorderPoints))
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func reorderPointsHash(table engine.ReorderPointTable) string {
	keys := make([]string, 0, len(table.Points))
	for k := range table.Points {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, fmt.Sprintf("default=%.2f", table.Default))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, table.Points[k]))
	}
	return strings.Join(parts, ",")
}

func joinInts(values []int) string {
	c := append([]int(nil), values...)
	sort.Ints(c)
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(strs, ",")
}
