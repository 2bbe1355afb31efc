package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"taxi-booking-service/internal/config"
	"taxi-booking-service/internal/model"
)

const statsKey = "taxi:stats:dashboard"

// RedisStatsCache keeps the dashboard stats in redis for a fixed TTL.
// Cache errors are logged and treated as misses.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisStatsCache {
	return &RedisStatsCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "stats-cache").Logger(),
	}
}

// Connect opens a redis client for cfg and checks it with a PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (c *RedisStatsCache) Get(ctx context.Context) (*model.DashboardStats, bool) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("stats cache read failed")
		}
		return nil, false
	}

	var stats model.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.log.Warn().Err(err).Msg("stats cache entry is corrupt")
		return nil, false
	}
	return &stats, true
}

func (c *RedisStatsCache) Set(ctx context.Context, stats *model.DashboardStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn().Err(err).Msg("stats cache encode failed")
		return
	}
	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("stats cache write failed")
	}
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("stats cache invalidate failed")
	}
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context) (*model.DashboardStats, bool) { return nil, false }
func (Noop) Set(context.Context, *model.DashboardStats)        {}
func (Noop) Invalidate(context.Context)                        {}
