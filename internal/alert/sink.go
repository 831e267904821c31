package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// Sink accepts batches of at-risk entities for downstream multi-channel
// delivery. The forecasting engine only produces the payload; delivery is
// someone else's job.
type Sink interface {
	Publish(ctx context.Context, accountID int64, items []domain.AlertItem) error
}

type redisSink struct {
	client   *redis.Client
	queueKey string
}

type noopSink struct{}

// alertEnvelope is the wire payload pushed onto the delivery queue.
type alertEnvelope struct {
	AccountID   int64              `json:"account_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Items       []domain.AlertItem `json:"items"`
}

// NewSink returns the redis-backed sink when alerting is enabled, otherwise
// a noop.
func NewSink(cfg config.AlertConfig, cacheCfg config.CacheConfig) (Sink, error) {
	if !cfg.Enabled {
		return &noopSink{}, nil
	}

	opts, err := buildRedisOptions(cacheCfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	queueKey := cfg.QueueKey
	if queueKey == "" {
		queueKey = "forecast:alerts:pending"
	}

	return &redisSink{client: client, queueKey: queueKey}, nil
}

func NewNoopSink() Sink {
	return &noopSink{}
}

func (s *redisSink) Publish(ctx context.Context, accountID int64, items []domain.AlertItem) error {
	if len(items) == 0 {
		return nil
	}

	payload, err := json.Marshal(alertEnvelope{
		AccountID:   accountID,
		GeneratedAt: time.Now().UTC(),
		Items:       items,
	})
	if err != nil {
		return fmt.Errorf("encode alert batch: %w", err)
	}

	if err := s.client.LPush(ctx, s.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}
	return nil
}

func (n *noopSink) Publish(ctx context.Context, accountID int64, items []domain.AlertItem) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
