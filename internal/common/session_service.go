package common

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/metrics"
)

const snapshotKeyPattern = "authz_snapshot"

// BanWindow is a ban that is in effect or still to come when the snapshot is built
type BanWindow struct {
	Reason string     `json:"reason"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
}

// Covers reports whether the window includes now. Ends are exclusive.
func (b BanWindow) Covers(now time.Time) bool {
	if b.Start.After(now) {
		return false
	}
	return b.End == nil || b.End.After(now)
}

// AuthSnapshot is the cached authorization state of one user
type AuthSnapshot struct {
	UserID           int64          `json:"user_id"`
	Username         string         `json:"username"`
	Roles            []string       `json:"roles"`
	Features         []string       `json:"features"`
	Tier             constants.Tier `json:"tier"`
	SubscriptionTier int            `json:"subscription_tier"`
	Bans             []BanWindow    `json:"bans,omitempty"`
	ComputedAt       time.Time      `json:"computed_at"`

	// ValidUntil is the next moment a derived role lapses. The snapshot is
	// rebuilt once it passes.
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// ActiveBan returns the ban in effect at now, or nil when the user may act.
// Bans are kept newest start first, so the first covering window wins.
func (s *AuthSnapshot) ActiveBan(now time.Time) *BanWindow {
	for i := range s.Bans {
		if s.Bans[i].Covers(now) {
			return &s.Bans[i]
		}
	}
	return nil
}

// Expired reports whether a derived role has lapsed since the snapshot was built.
func (s *AuthSnapshot) Expired(now time.Time) bool {
	return s.ValidUntil != nil && !now.Before(*s.ValidUntil)
}

// HasRole checks if the snapshot carries role
func (s *AuthSnapshot) HasRole(role constants.Role) bool {
	for _, r := range s.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// SnapshotSource rebuilds a snapshot from storage
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context, userID int64) (*AuthSnapshot, error)
}

// SessionService serves authorization snapshots from cache and honours stale flags
type SessionService struct {
	cache   CacheInterface
	source  SnapshotSource
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewSessionService(cache CacheInterface, source SnapshotSource, ttl time.Duration, m *metrics.MetricsRegistry, logger *zap.SugaredLogger) *SessionService {
	return &SessionService{
		cache:   cache,
		source:  source,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot returns the cached snapshot unless it is missing, flagged stale or
// past its ValidUntil, in which case it is recomputed and the flag consumed.
func (s *SessionService) Snapshot(ctx context.Context, userID int64) (*AuthSnapshot, error) {
	stale, err := s.cache.Exists(ctx, StaleFlagKey(userID))
	if err != nil {
		s.logger.Warnw("Stale flag lookup failed, recomputing", "user_id", userID, "error", err)
		stale = true
	}

	if !stale {
		var snap AuthSnapshot
		found, err := s.cache.Get(ctx, SnapshotKey(userID), &snap)
		if err != nil {
			s.logger.Warnw("Snapshot read failed, recomputing", "user_id", userID, "error", err)
		}
		if found && err == nil && !snap.Expired(s.now()) {
			s.recordHit()
			return &snap, nil
		}
	}
	s.recordMiss()

	// Clear first so a flag raised while we rebuild survives for the next request.
	if stale {
		if err := s.cache.Delete(ctx, StaleFlagKey(userID)); err != nil {
			s.logger.Warnw("Failed to clear stale flag", "user_id", userID, "error", err)
		}
	}

	snap, err := s.source.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild snapshot: %w", err)
	}

	ttl := s.ttl
	if snap.ValidUntil != nil {
		if left := snap.ValidUntil.Sub(s.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return snap, nil
	}
	if err := s.cache.Set(ctx, SnapshotKey(userID), snap, ttl); err != nil {
		s.logger.Warnw("Failed to store snapshot", "user_id", userID, "error", err)
	}
	return snap, nil
}

func (s *SessionService) recordHit() {
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues(snapshotKeyPattern).Inc()
	}
}

func (s *SessionService) recordMiss() {
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues(snapshotKeyPattern).Inc()
	}
}
