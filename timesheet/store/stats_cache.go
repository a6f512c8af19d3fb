// timesheet/store/stats_cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adhils04/timesheets/shared/models"
	redisu "github.com/adhils04/timesheets/shared/redis"
	"github.com/redis/go-redis/v9"
)

// StatsCache holds a disposable JSON snapshot of the aggregate document in
// Redis. Reads prefer it, every write path refreshes or invalidates it, and
// losing it costs nothing but one Mongo read.
type StatsCache struct {
	client *redis.ClusterClient
	ttl    time.Duration
}

// NewStatsCache creates a new StatsCache instance.
func NewStatsCache(client *redis.ClusterClient, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached snapshot, or (nil, nil) on a miss. A payload that
// fails to decode counts as a miss too; the caller will overwrite it.
func (sc *StatsCache) Get(ctx context.Context) (*models.AggregateStats, error) {
	val, err := sc.client.Get(ctx, redisu.StatsCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats cache from Redis: %w", err)
	}

	var agg models.AggregateStats
	if err := json.Unmarshal([]byte(val), &agg); err != nil {
		return nil, nil
	}
	return &agg, nil
}

// Set stores a snapshot with the configured TTL.
func (sc *StatsCache) Set(ctx context.Context, agg *models.AggregateStats) error {
	payload, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode stats cache payload: %w", err)
	}
	if err := sc.client.Set(ctx, redisu.StatsCacheKey, payload, sc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache to Redis: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot so the next read goes to Mongo.
func (sc *StatsCache) Invalidate(ctx context.Context) error {
	if err := sc.client.Del(ctx, redisu.StatsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache in Redis: %w", err)
	}
	return nil
}
