package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/models"
)

const snapshotPrefix = "market:"

// SnapshotCache memoizes aggregated market snapshots per collection so a
// burst of valuations in the same collection does not recompute the same
// statistics. Same degradation policy as ValuationCache: no backend, no
// caching, no error.
type SnapshotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewSnapshotCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *SnapshotCache) Get(ctx context.Context, collection string) (models.MarketSnapshot, bool) {
	if c.rdb == nil {
		return models.MarketSnapshot{}, false
	}

	data, err := c.rdb.Get(ctx, snapshotPrefix+collection).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithFields(logrus.Fields{"collection": collection, "error": err.Error()}).
				Warn("Cache backend error on snapshot get, treating as miss")
		}
		return models.MarketSnapshot{}, false
	}

	var snap models.MarketSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		c.logger.WithFields(logrus.Fields{"collection": collection, "error": err.Error()}).
			Warn("Corrupt snapshot entry, treating as miss")
		return models.MarketSnapshot{}, false
	}
	return snap, true
}

func (c *SnapshotCache) Set(ctx context.Context, collection string, snap models.MarketSnapshot) {
	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"collection": collection, "error": err.Error()}).
			Warn("Failed to serialize snapshot")
		return
	}
	if err := c.rdb.Set(ctx, snapshotPrefix+collection, data, c.ttl).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{"collection": collection, "error": err.Error()}).
			Warn("Cache backend error on snapshot set, skipping")
	}
}
