// Package cache invalidates derived availability views. Views are never
// updated in place: every state-changing operation drops the affected keys
// and readers rebuild on next access.
package cache

import (
	"context"
	"time"

	"roomtime/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Invalidator drops the cached availability view for one resource and day.
type Invalidator interface {
	Invalidate(ctx context.Context, resourceID string, day time.Time) error
}

const availabilityKeyPrefix = "availability:"

// Key returns the cache key for a resource's availability view on a given
// UTC day.
func Key(resourceID string, day time.Time) string {
	return availabilityKeyPrefix + resourceID + ":" + day.UTC().Format("2006-01-02")
}

// RedisInvalidator deletes availability keys from Redis.
type RedisInvalidator struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisInvalidator(rdb *redis.Client, log *logger.Logger) *RedisInvalidator {
	return &RedisInvalidator{rdb: rdb, log: log}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, resourceID string, day time.Time) error {
	key := Key(resourceID, day)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.log.Warn("Failed to invalidate availability cache", "key", key, "error", err)
		return err
	}
	r.log.Debug("Availability cache invalidated", "key", key)
	return nil
}

// NopInvalidator is used in tests and when no cache is deployed.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(ctx context.Context, resourceID string, day time.Time) error {
	return nil
}
