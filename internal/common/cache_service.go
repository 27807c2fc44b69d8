package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-memory cache used when CACHE_BACKEND=memory
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

func (cs *CacheService) Set(_ context.Context, key string, value any, duration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	cs.cache.Set(key, data, duration)
	return nil
}

func (cs *CacheService) Get(_ context.Context, key string, dest any) (bool, error) {
	val, found := cs.cache.Get(key)
	if !found {
		return false, nil
	}

	data, ok := val.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected cache entry type %T for key %s", val, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}
	return true, nil
}

func (cs *CacheService) Exists(_ context.Context, key string) (bool, error) {
	_, found := cs.cache.Get(key)
	return found, nil
}

func (cs *CacheService) Delete(_ context.Context, key string) error {
	cs.cache.Delete(key)
	return nil
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
