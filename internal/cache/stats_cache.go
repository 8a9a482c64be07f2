package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/alphaquant/idx-screener-go/internal/models"
)

// StatsCacheEntry wraps a stored stats map with cache metadata.
type StatsCacheEntry struct {
	Stats    map[string]models.BacktestStats `json:"stats"`
	CachedAt time.Time                       `json:"cached_at"`
}

// StatsCacheMetrics tracks cache performance counters.
type StatsCacheMetrics struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisStatsCache caches the full backtest stats table in Redis so live
// scans do not hit Postgres on every run.
type RedisStatsCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	stats  *StatsCacheMetrics
	key    string
}

func NewRedisStatsCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStatsCache {
	return &RedisStatsCache{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
		stats:  &StatsCacheMetrics{},
		key:    "backtest_stats:all",
	}
}

// Get retrieves the cached stats table. A miss returns (nil, false).
func (c *RedisStatsCache) Get(ctx context.Context) (map[string]models.BacktestStats, bool) {
	data, err := c.redis.Get(ctx, c.key).Result()
	if err == redis.Nil {
		c.recordMiss()
		return nil, false
	}
	if err != nil {
		c.logger.WithField("error", err.Error()).Warn("Redis error reading backtest stats")
		c.recordMiss()
		return nil, false
	}

	var entry StatsCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithField("error", err.Error()).Warn("Failed to deserialize cached backtest stats")
		c.recordMiss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	return entry.Stats, true
}

// Set stores the stats table with the configured TTL.
func (c *RedisStatsCache) Set(ctx context.Context, stats map[string]models.BacktestStats) error {
	entry := StatsCacheEntry{
		Stats:    stats,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize backtest stats: %w", err)
	}

	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache backtest stats: %w", err)
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()

	return nil
}

// Invalidate drops the cached table, forcing the next scan to reload from
// Postgres. Called after a backtest run refreshes the stored stats.
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate backtest stats cache: %w", err)
	}
	return nil
}

// Metrics returns a snapshot of the hit/miss counters.
func (c *RedisStatsCache) Metrics() StatsCacheMetrics {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return StatsCacheMetrics{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

func (c *RedisStatsCache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
