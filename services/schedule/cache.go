// File: services/schedule/cache.go
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fixmo/models"

	"github.com/go-redis/redis/v8"
)

// AvailabilityCache holds short-lived resolver projections. Writers must
// capture the provider's epoch before reading the ledger and pass it to
// SetIfCurrent: InvalidateProvider bumps the epoch, so a projection computed
// from a ledger read that predates a commit is silently dropped instead of
// overwriting the invalidation. A cached projection therefore never shows a
// slot as available after a booking for it has landed.
type AvailabilityCache interface {
	Get(ctx context.Context, providerID, date string) ([]models.ProjectedSlot, bool)
	Epoch(ctx context.Context, providerID string) string
	SetIfCurrent(ctx context.Context, providerID, date string, slots []models.ProjectedSlot, epoch string) error
	InvalidateProvider(ctx context.Context, providerID string) error
}

type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

const availabilityKeyPrefix = "avail:"

func availabilityKey(providerID, date string) string {
	return fmt.Sprintf("%s%s:%s", availabilityKeyPrefix, providerID, date)
}

func epochKey(providerID string) string {
	return fmt.Sprintf("%sepoch:%s", availabilityKeyPrefix, providerID)
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, providerID, date string) ([]models.ProjectedSlot, bool) {
	val, err := c.client.Get(ctx, availabilityKey(providerID, date)).Result()
	if err != nil {
		return nil, false
	}
	var slots []models.ProjectedSlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Epoch returns the provider's current invalidation epoch. A provider that
// has never been invalidated has the empty epoch.
func (c *RedisAvailabilityCache) Epoch(ctx context.Context, providerID string) string {
	val, err := c.client.Get(ctx, epochKey(providerID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetIfCurrent stores the projection only if the provider's epoch still
// matches the one captured before the ledger read. The epoch check and the
// write run under WATCH, so an invalidation racing with the write either
// lands before the check (write skipped) or aborts the transaction.
func (c *RedisAvailabilityCache) SetIfCurrent(ctx context.Context, providerID, date string, slots []models.ProjectedSlot, epoch string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	ek := epochKey(providerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, ek).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != epoch {
			return nil // projection is stale, drop it
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, availabilityKey(providerID, date), data, c.ttl)
			return nil
		})
		return err
	}, ek)
	if err == redis.TxFailedErr {
		return nil
	}
	return err
}

// InvalidateProvider bumps the epoch first, so an in-flight resolution that
// read the ledger before this write can no longer repopulate the cache, then
// sweeps existing entries. SCAN keeps the sweep incremental on large
// keyspaces.
func (c *RedisAvailabilityCache) InvalidateProvider(ctx context.Context, providerID string) error {
	if err := c.client.Incr(ctx, epochKey(providerID)).Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, availabilityKeyPrefix+providerID+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
