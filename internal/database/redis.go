package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/config"
)

type RedisClient struct {
	Client *redis.Client
}

// NewRedisConnection dials Redis and verifies connectivity. An unreachable
// backend is not fatal: the cache layer treats a failing client as an
// always-empty cache, so the wrapper is returned either way and the caller
// only loses caching performance.
func NewRedisConnection(cfg config.RedisConfig, logger *logrus.Logger) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable at startup, continuing without cache")
	} else {
		logger.Info("Successfully connected to Redis")
	}

	return &RedisClient{Client: rdb}
}

func (r *RedisClient) Close() {
	if r.Client != nil {
		if err := r.Client.Close(); err == nil {
			logrus.Info("Redis connection closed")
		}
	}
}

func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return r.Client.Ping(ctx).Err()
}
