package common

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/metrics"
)

// EntitlementInvalidator marks a user's authorization snapshot as stale so
// the next authenticated request rebuilds it.
type EntitlementInvalidator interface {
	FlagStale(ctx context.Context, userID int64) error
}

func SnapshotKey(userID int64) string {
	return string(constants.CachePrefixAuthSnapshot) + strconv.FormatInt(userID, 10)
}

func StaleFlagKey(userID int64) string {
	return string(constants.CachePrefixStaleFlag) + strconv.FormatInt(userID, 10)
}

// CacheInvalidator writes stale flags into the shared cache.
type CacheInvalidator struct {
	cache   CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

var _ EntitlementInvalidator = (*CacheInvalidator)(nil)

// NewCacheInvalidator keeps flags for ttl, which should be at least the
// snapshot TTL so a flag never expires before the snapshot it guards.
func NewCacheInvalidator(cache CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, ttl: ttl, metrics: m}
}

func (i *CacheInvalidator) FlagStale(ctx context.Context, userID int64) error {
	if err := i.cache.Set(ctx, StaleFlagKey(userID), true, i.ttl); err != nil {
		if i.metrics != nil {
			i.metrics.InvalidationFailuresTotal.Inc()
		}
		return fmt.Errorf("failed to flag user %d stale: %w", userID, err)
	}
	if i.metrics != nil {
		i.metrics.StaleFlagsTotal.Inc()
	}
	return nil
}
