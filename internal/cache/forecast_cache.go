package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/engine"
	"github.com/redis/go-redis/v9"
)

const (
	forecastResultKeyPrefix = "forecast:result"
	forecastScanBatchSize   = 100
)

// ForecastCache is a short-lived cache for computed engine results, keyed by
// dataset ID and run parameters. It only ever holds recomputable values; a
// miss just means the engine runs again.
type ForecastCache interface {
	GetResult(ctx context.Context, datasetID string, params engine.Params) (*engine.Result, bool, error)
	SetResult(ctx context.Context, datasetID string, params engine.Params, result *engine.Result) error
	InvalidateDataset(ctx context.Context, datasetID string) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache returns a redis-backed cache when enabled, otherwise a
// noop implementation so callers never need a nil check.
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetResult(ctx context.Context, datasetID string, params engine.Params) (*engine.Result, bool, error) {
	key := buildForecastResultKey(datasetID, params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result engine.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast result cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisForecastCache) SetResult(ctx context.Context, datasetID string, params engine.Params, result *engine.Result) error {
	key := buildForecastResultKey(datasetID, params)
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast result cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateDataset(ctx context.Context, datasetID string) error {
	prefix := fmt.Sprintf("%s:%s:", forecastResultKeyPrefix, datasetID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, forecastScanBatchSize)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastResultKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) GetResult(ctx context.Context, datasetID string, params engine.Params) (*engine.Result, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetResult(ctx context.Context, datasetID string, params engine.Params, result *engine.Result) error {
	return nil
}

func (n *noopForecastCache) InvalidateDataset(ctx context.Context, datasetID string) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastResultKey(datasetID string, params engine.Params) string {
	return fmt.Sprintf("%s:%s:%s", forecastResultKeyPrefix, datasetID, paramsHash(params))
}

func paramsHash(params engine.Params) string {
	payload, err := json.Marshal(struct {
		Mapping      engine.Mapping
		Granularity  string
		Strategy     string
		Policy       string
		Horizon      int
		LeadTime     int
		ServiceLevel float64
	}{
		Mapping:      params.Mapping,
		Granularity:  string(params.Granularity),
		Strategy:     string(params.Strategy),
		Policy:       string(params.Policy),
		Horizon:      params.Horizon,
		LeadTime:     params.LeadTime,
		ServiceLevel: params.ServiceLevel,
	})
	if err != nil {
		return "invalid"
	}

	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}
