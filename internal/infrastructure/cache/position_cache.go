package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet-telemetry/internal/domain/position"
	pkgerrors "fleet-telemetry/pkg/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PositionCache is the fast lookup for a device's most recent reading.
// It is a pure performance optimization: callers must treat a miss or
// an error as "fall back to the position store", never as a failure.
type PositionCache interface {
	Put(ctx context.Context, deviceID uuid.UUID, snapshot position.Snapshot) error
	Get(ctx context.Context, deviceID uuid.UUID) (*position.Snapshot, error)
}

// RedisPositionCache stores the narrow live snapshot per device under
// device.<id>.last_position with a TTL. Last writer wins: an
// out-of-order reading can overwrite a newer snapshot with stale data,
// which is accepted.
type RedisPositionCache struct {
	client *redis.Client
	ttl    time.Duration
}

const DefaultLastPositionTTL = 24 * time.Hour

func NewRedisPositionCache(client *redis.Client, ttl time.Duration) *RedisPositionCache {
	if ttl <= 0 {
		ttl = DefaultLastPositionTTL
	}
	return &RedisPositionCache{client: client, ttl: ttl}
}

func (c *RedisPositionCache) Put(ctx context.Context, deviceID uuid.UUID, snapshot position.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return &pkgerrors.CacheError{Key: lastPositionKey(deviceID), Err: err}
	}

	if err := c.client.Set(ctx, lastPositionKey(deviceID), payload, c.ttl).Err(); err != nil {
		return &pkgerrors.CacheError{Key: lastPositionKey(deviceID), Err: err}
	}
	return nil
}

// Get returns (nil, nil) on a miss. Expiry is not an error.
func (c *RedisPositionCache) Get(ctx context.Context, deviceID uuid.UUID) (*position.Snapshot, error) {
	val, err := c.client.Get(ctx, lastPositionKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &pkgerrors.CacheError{Key: lastPositionKey(deviceID), Err: err}
	}

	var snapshot position.Snapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, &pkgerrors.CacheError{Key: lastPositionKey(deviceID), Err: err}
	}
	return &snapshot, nil
}

func lastPositionKey(deviceID uuid.UUID) string {
	return fmt.Sprintf("device.%s.last_position", deviceID)
}
