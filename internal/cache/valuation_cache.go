package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/models"
)

// DefaultValuationTTL bounds how stale a cached valuation may be served.
const DefaultValuationTTL = 3600 * time.Second

// valuationEntry is the serialized cache value. ExpiresAt duplicates the
// Redis TTL so an entry is never returned past its expiry even if the
// backend's eviction lags.
type valuationEntry struct {
	Valuation decimal.Decimal `json:"valuation"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// ValuationCache stores computed valuations in Redis with a per-entry
// TTL. The logical key is the collectible id; physically keys are
// namespaced by the feature encoding version so an encoding change never
// reuses entries computed under the old one. Every operation degrades to
// a miss or no-op when the backend is absent or unreachable: a cache
// outage costs performance, never correctness.
//
// Concurrent misses for the same key may each compute independently;
// the last writer wins and the TTL bounds the disagreement window.
type ValuationCache struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	prefix     string
	logger     *logrus.Logger

	mu    sync.Mutex
	stats Stats
}

// NewValuationCache wraps a Redis client. A nil client is accepted and
// behaves as an always-empty cache.
func NewValuationCache(rdb *redis.Client, defaultTTL time.Duration, logger *logrus.Logger) *ValuationCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultValuationTTL
	}
	return &ValuationCache{
		rdb:        rdb,
		defaultTTL: defaultTTL,
		prefix:     fmt.Sprintf("valuation:v%d:", models.FeatureEncodingVersion),
		logger:     logger,
	}
}

// Get returns the cached valuation for a collectible, or a miss.
func (c *ValuationCache) Get(ctx context.Context, nftID string) (decimal.Decimal, bool) {
	if c.rdb == nil {
		c.recordMiss()
		return decimal.Zero, false
	}

	data, err := c.rdb.Get(ctx, c.prefix+nftID).Result()
	if err == redis.Nil {
		c.recordMiss()
		return decimal.Zero, false
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Cache backend error on get, treating as miss")
		c.recordMiss()
		return decimal.Zero, false
	}

	var entry valuationEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Corrupt cache entry, treating as miss")
		c.recordMiss()
		return decimal.Zero, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.recordMiss()
		return decimal.Zero, false
	}

	c.recordHit()
	return entry.Valuation, true
}

// Set caches a valuation. A non-positive ttl uses the cache default.
func (c *ValuationCache) Set(ctx context.Context, nftID string, valuation decimal.Decimal, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	entry := valuationEntry{
		Valuation: valuation,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Failed to serialize cache entry")
		return
	}

	if err := c.rdb.Set(ctx, c.prefix+nftID, data, ttl).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Cache backend error on set, skipping")
		return
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}

// Delete removes a cached valuation. Backend failures are a no-op.
func (c *ValuationCache) Delete(ctx context.Context, nftID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.prefix+nftID).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{"nft_id": nftID, "error": err.Error()}).
			Warn("Cache backend error on delete, skipping")
	}
}

// FlushAll removes every valuation entry under the current encoding
// version.
func (c *ValuationCache) FlushAll(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WithError(err).Warn("Cache backend error scanning keys, flush skipped")
		return nil
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).Warn("Cache backend error on flush, skipping")
		return nil
	}
	c.logger.WithField("count", len(keys)).Info("Flushed valuation cache entries")
	return nil
}

// GetStats returns a copy of the current counters.
func (c *ValuationCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *ValuationCache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

func (c *ValuationCache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
