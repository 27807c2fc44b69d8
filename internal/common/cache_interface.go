package common

import (
	"context"
	"time"
)

// CacheInterface defines the contract for cache implementations.
// Values are stored as JSON so both backends round-trip the same types.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(ctx context.Context, key string, value any, duration time.Duration) error

	// Get decodes the cached value into dest.
	// Returns false when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Exists reports whether key is present without decoding it
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string) error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
