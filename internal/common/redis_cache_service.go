package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService wraps an existing client. The client is shared with
// the IP history lookups, so Close is the owner's call.
func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{client: client}
}

// Set stores a value in Redis with the given key and duration
func (r *RedisCacheService) Set(ctx context.Context, key string, value any, duration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis cache: failed to marshal value for key %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, duration).Err(); err != nil {
		return fmt.Errorf("redis cache: failed to set key %s: %w", key, err)
	}
	return nil
}

// Get retrieves a value from Redis by key
func (r *RedisCacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache: failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("redis cache: failed to unmarshal value for key %s: %w", key, err)
	}
	return true, nil
}

// Exists checks if a key exists
func (r *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis cache: failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes a value from Redis by key
func (r *RedisCacheService) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis cache: failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the client is closed by whoever created it
func (r *RedisCacheService) Close() error {
	return nil
}

// TTL returns the remaining time to live of a key
func (r *RedisCacheService) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.client.TTL(ctx, key).Result()
}
