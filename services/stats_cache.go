package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardKey = "stats:dashboard"
	// dashboardGenKey is bumped on every invalidation. A dashboard computed
	// under an older generation is never stored.
	dashboardGenKey = "stats:dashboard:gen"
)

// StatsCache keeps rendered dashboards in Redis, one hash field per recent-attempts limit.
// A nil cache or a cache without a client is a no-op.
type StatsCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: client, ttl: ttl}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

func (c *StatsCache) loadDashboard(ctx context.Context, recent int) *Dashboard {
	if !c.enabled() {
		return nil
	}

	data, err := c.redis.HGet(ctx, dashboardKey, strconv.Itoa(recent)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting dashboard: %v", err)
		}
		return nil
	}

	var dashboard Dashboard
	if err := json.Unmarshal([]byte(data), &dashboard); err != nil {
		log.Printf("Failed to unmarshal cached dashboard: %v", err)
		return nil
	}
	return &dashboard
}

// generation reads the current invalidation counter. ok is false when the
// cache is off or Redis failed, and then nothing should be stored.
func (c *StatsCache) generation(ctx context.Context) (gen int64, ok bool) {
	if !c.enabled() {
		return 0, false
	}

	gen, err := c.redis.Get(ctx, dashboardGenKey).Int64()
	if err != nil && err != redis.Nil {
		log.Printf("Redis error getting dashboard generation: %v", err)
		return 0, false
	}
	return gen, true
}

// storeDashboard writes the dashboard only if no Invalidate ran since gen was read.
func (c *StatsCache) storeDashboard(ctx context.Context, gen int64, recent int, dashboard *Dashboard) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(dashboard)
	if err != nil {
		log.Printf("Failed to marshal dashboard: %v", err)
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, dashboardGenKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return redis.TxFailedErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, dashboardKey, strconv.Itoa(recent), data)
			pipe.Expire(ctx, dashboardKey, c.ttl)
			return nil
		})
		return err
	}, dashboardGenKey)
	if err != nil && err != redis.TxFailedErr {
		log.Printf("Failed to store dashboard in Redis: %v", err)
	}
}

// Invalidate drops every cached dashboard. Called after any write that changes totals.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}

	pipe := c.redis.TxPipeline()
	pipe.Incr(ctx, dashboardGenKey)
	pipe.Del(ctx, dashboardKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}
