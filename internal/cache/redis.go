package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arwoh/storefront-go/internal/cart"
)

var ErrCacheMiss = errors.New("cache miss")

var _ cart.SnapshotCache = (*RedisSnapshotCache)(nil)

// RedisSnapshotCache keeps the last confirmed cart per user so a new browser
// session can render something before the first fetch returns.
type RedisSnapshotCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
}

func NewRedisSnapshotCache(client redis.Cmdable, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSnapshotCache{client: client, baseTTL: ttl}
}

func (r *RedisSnapshotCache) Get(ctx context.Context, userID int64) (cart.Snapshot, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Snapshot{}, ErrCacheMiss
	}
	if err != nil {
		return cart.Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var s cart.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return cart.Snapshot{}, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return s, nil
}

func (r *RedisSnapshotCache) Set(ctx context.Context, userID int64, s cart.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}

	// Spread expiry so sessions started together do not all miss at once.
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/10) + 1))
	if err := r.client.Set(ctx, cacheKey(userID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSnapshotCache) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Ping reports whether redis answers. Used by the upstream health check.
func (r *RedisSnapshotCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("cart:snapshot:%d", userID)
}
