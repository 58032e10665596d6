package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "taxcalc:remote:"

// Redis is a Store backed by Redis. Entries expire through native key TTLs,
// so no sweeping is needed.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedis constructs a Redis-backed store. A non-positive defaultTTL falls
// back to DefaultTTL.
func NewRedis(client *redis.Client, defaultTTL time.Duration) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Redis{client: client, defaultTTL: defaultTTL}
}

// Get performs a Redis GET. Misses return ErrNotFound; transport errors are
// wrapped.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cached response: %w", err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.client.Set(ctx, redisKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save cached response: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete cached response: %w", err)
	}
	return nil
}

// Clear removes every key under the cache prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clear cached responses: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("clear cached responses: %w", err)
	}
	return nil
}

// redisKey hashes the request key; raw keys embed whole request bodies.
func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}

var _ Store = (*Redis)(nil)
