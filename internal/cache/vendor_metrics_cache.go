package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/merchops/replenish/internal/config"
	"github.com/merchops/replenish/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	vendorMetricsKeyPrefix    = "vendor_perf:metrics"
	vendorMetricsScanBatchLen = 100
)

// VendorMetricsCache caches per-vendor performance aggregates. Computing
// them walks the vendor's full order history, so reads are cached and
// invalidated whenever a delivery lands.
type VendorMetricsCache interface {
	GetMetrics(ctx context.Context, vendorID string) (*domain.VendorPerformanceMetrics, bool, error)
	SetMetrics(ctx context.Context, metrics domain.VendorPerformanceMetrics) error
	InvalidateMetrics(ctx context.Context, vendorID string) error
	InvalidateAll(ctx context.Context) error
}

type redisVendorMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopVendorMetricsCache struct{}

func NewVendorMetricsCache(cfg config.CacheConfig) (VendorMetricsCache, error) {
	if !cfg.Enabled {
		return &noopVendorMetricsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisVendorMetricsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopVendorMetricsCache() VendorMetricsCache {
	return &noopVendorMetricsCache{}
}

func (c *redisVendorMetricsCache) GetMetrics(ctx context.Context, vendorID string) (*domain.VendorPerformanceMetrics, bool, error) {
	key := buildVendorMetricsKey(vendorID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var metrics domain.VendorPerformanceMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, false, fmt.Errorf("decode vendor metrics cache: %w", err)
	}

	return &metrics, true, nil
}

func (c *redisVendorMetricsCache) SetMetrics(ctx context.Context, metrics domain.VendorPerformanceMetrics) error {
	key := buildVendorMetricsKey(metrics.VendorID)
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode vendor metrics cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisVendorMetricsCache) InvalidateMetrics(ctx context.Context, vendorID string) error {
	return c.client.Del(ctx, buildVendorMetricsKey(vendorID)).Err()
}

func (c *redisVendorMetricsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, vendorMetricsKeyPrefix, vendorMetricsScanBatchLen)
}

func (n *noopVendorMetricsCache) GetMetrics(ctx context.Context, vendorID string) (*domain.VendorPerformanceMetrics, bool, error) {
	return nil, false, nil
}

func (n *noopVendorMetricsCache) SetMetrics(ctx context.Context, metrics domain.VendorPerformanceMetrics) error {
	return nil
}

func (n *noopVendorMetricsCache) InvalidateMetrics(ctx context.Context, vendorID string) error {
	return nil
}

func (n *noopVendorMetricsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildVendorMetricsKey(vendorID string) string {
	return fmt.Sprintf("%s:%s", vendorMetricsKeyPrefix, vendorID)
}
