package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

const (
	forecastKeyPrefix     = "forecast:skus"
	forecastScanBatchSize = 100
)

// ForecastCache holds computed forecast lists for a short TTL. Forecasts are
// a pure function of point-in-time inputs, so a cached list is always safe
// to serve until it expires.
type ForecastCache interface {
	GetForecasts(ctx context.Context, accountID int64, horizonDays int) ([]domain.SkuForecast, bool, error)
	SetForecasts(ctx context.Context, accountID int64, horizonDays int, forecasts []domain.SkuForecast) error
	InvalidateAccount(ctx context.Context, accountID int64) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetForecasts(ctx context.Context, accountID int64, horizonDays int) ([]domain.SkuForecast, bool, error) {
	key := buildForecastKey(accountID, horizonDays)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var forecasts []domain.SkuForecast
	if err := json.Unmarshal(payload, &forecasts); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return forecasts, true, nil
}

func (c *redisForecastCache) SetForecasts(ctx context.Context, accountID int64, horizonDays int, forecasts []domain.SkuForecast) error {
	key := buildForecastKey(accountID, horizonDays)
	payload, err := json.Marshal(forecasts)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAccount(ctx context.Context, accountID int64) error {
	prefix := fmt.Sprintf("%s:%d:", forecastKeyPrefix, accountID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, forecastScanBatchSize)
}

func (n *noopForecastCache) GetForecasts(ctx context.Context, accountID int64, horizonDays int) ([]domain.SkuForecast, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetForecasts(ctx context.Context, accountID int64, horizonDays int, forecasts []domain.SkuForecast) error {
	return nil
}

func (n *noopForecastCache) InvalidateAccount(ctx context.Context, accountID int64) error {
	return nil
}

func buildForecastKey(accountID int64, horizonDays int) string {
	return fmt.Sprintf("%s:%d:%d", forecastKeyPrefix, accountID, horizonDays)
}
