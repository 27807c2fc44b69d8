package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/metrics"
)

const (
	outcomeCommitted = "committed"
	outcomeAborted   = "aborted"
	outcomeFailed    = "failed"
)

// Mutation is one admin write. Validate runs first and must not write.
// Persist reports whether visible state changed; the stale flag is raised
// only when it did.
type Mutation struct {
	Name     string
	UserID   int64
	Validate func(ctx context.Context, l *Ledgers) error
	Persist  func(ctx context.Context, l *Ledgers) (changed bool, err error)

	// Related names other users whose rows the mutation touched. It is read
	// after Persist.
	Related func() []int64
}

// stale returns UserID followed by any related users, without repeats
func (m Mutation) stale() []int64 {
	ids := []int64{m.UserID}
	if m.Related == nil {
		return ids
	}
	for _, id := range m.Related() {
		if id > 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// MutationCoordinator is the only component that opens a transaction.
// Each mutation runs Begin, Validate, Persist, Invalidate, Commit, and any
// failure before Commit rolls everything back. The flag is raised once more
// after Commit so a rebuild that consumed it mid-transaction is redone.
type MutationCoordinator struct {
	db          *gorm.DB
	ledgers     *LedgerFactory
	invalidator common.EntitlementInvalidator
	metrics     *metrics.MetricsRegistry
	logger      *zap.SugaredLogger
}

func NewMutationCoordinator(
	db *gorm.DB,
	ledgers *LedgerFactory,
	invalidator common.EntitlementInvalidator,
	m *metrics.MetricsRegistry,
	logger *zap.SugaredLogger,
) *MutationCoordinator {
	return &MutationCoordinator{
		db:          db,
		ledgers:     ledgers,
		invalidator: invalidator,
		metrics:     m,
		logger:      logger,
	}
}

func (c *MutationCoordinator) Run(ctx context.Context, m Mutation) error {
	start := time.Now()
	committing := false
	changed := false

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l := c.ledgers.Bind(tx)

		if m.Validate != nil {
			if err := m.Validate(ctx, l); err != nil {
				return err
			}
		}

		var err error
		changed, err = m.Persist(ctx, l)
		if err != nil {
			return err
		}

		if changed {
			c.invalidate(ctx, m)
		}
		committing = true
		return nil
	})

	c.observe(m.Name, start)
	if err == nil {
		if changed {
			c.invalidate(ctx, m)
		}
		c.count(m.Name, outcomeCommitted)
		return nil
	}

	kind := KindOf(err)
	if committing || kind == KindStorageFailure || kind == KindIntegrity {
		logging.Critical(c.logger, "Admin mutation rolled back",
			"operation", m.Name,
			"user_id", m.UserID,
			"request_id", auth.GetRequestID(ctx),
			"error", err,
		)
		c.count(m.Name, outcomeFailed)

		var le *LedgerError
		if committing || !errors.As(err, &le) {
			return errStorage(err)
		}
		return err
	}

	c.count(m.Name, outcomeAborted)
	return err
}

// invalidate is best-effort; the mutation stands even when the signal is lost
func (c *MutationCoordinator) invalidate(ctx context.Context, m Mutation) {
	if c.invalidator == nil {
		return
	}
	for _, userID := range m.stale() {
		if err := c.invalidator.FlagStale(ctx, userID); err != nil {
			c.logger.Warnw("Failed to flag user stale",
				"operation", m.Name,
				"user_id", userID,
				"error", err,
			)
		}
	}
}

func (c *MutationCoordinator) count(operation, outcome string) {
	if c.metrics != nil {
		c.metrics.MutationsTotal.WithLabelValues(operation, outcome).Inc()
	}
}

func (c *MutationCoordinator) observe(operation string, start time.Time) {
	if c.metrics != nil {
		c.metrics.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
