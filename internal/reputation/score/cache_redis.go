package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lexara/pkg/domain"
)

// RedisCache shares computed scores across instances. Entries expire after a
// TTL as a safety net; the authoritative invalidation is the synchronous
// delete on append.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed score cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(userID domain.UserID) string {
	return "lexara:score:" + userID.String()
}

func (c *RedisCache) Get(ctx context.Context, userID domain.UserID) (Score, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Score{}, false, nil
	}
	if err != nil {
		return Score{}, false, fmt.Errorf("redis score get: %w", err)
	}

	var s Score
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return Score{}, false, nil
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID domain.UserID, s Score) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis score set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID domain.UserID) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis score invalidate: %w", err)
	}
	return nil
}
