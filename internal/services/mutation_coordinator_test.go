package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/metrics"
	"github.com/DelphiTri/website/internal/models/entities"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

func insertBanMutation(targetID int64, after func() error) Mutation {
	return Mutation{
		Name:   "ban_insert",
		UserID: targetID,
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			if _, err := l.Bans.Insert(ctx, &gormModels.Ban{
				TargetUserID:   targetID,
				Reason:         "spam",
				StartTimestamp: testNow,
			}); err != nil {
				return false, err
			}
			if after != nil {
				return false, after()
			}
			return true, nil
		},
	}
}

func TestMutationCoordinator_CommitsAndFlags(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})

	err := env.coordinator.Run(context.Background(), insertBanMutation(u.ID, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(1), env.countRows(t, &gormModels.Ban{}))
	assert.Equal(t, committedFlags(u.ID), env.invalidator.Flagged())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.MutationsTotal.WithLabelValues("ban_insert", outcomeCommitted)))
}

func TestMutationCoordinator_ValidateFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})
	persisted := false

	err := env.coordinator.Run(context.Background(), Mutation{
		Name:   "ban_insert",
		UserID: u.ID,
		Validate: func(context.Context, *Ledgers) error {
			return errMissing("reason")
		},
		Persist: func(context.Context, *Ledgers) (bool, error) {
			persisted = true
			return true, nil
		},
	})

	assert.Equal(t, KindValidationMissing, KindOf(err))
	assert.False(t, persisted)
	assert.Empty(t, env.invalidator.Flagged())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.MutationsTotal.WithLabelValues("ban_insert", outcomeAborted)))
}

func TestMutationCoordinator_PersistFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})

	err := env.coordinator.Run(context.Background(), insertBanMutation(u.ID, func() error {
		return errConflict("gifter", "late conflict", 0)
	}))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Zero(t, env.countRows(t, &gormModels.Ban{}))
	assert.Empty(t, env.invalidator.Flagged())
}

func TestMutationCoordinator_StorageFailureIsCritical(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})

	err := env.coordinator.Run(context.Background(), insertBanMutation(u.ID, func() error {
		return errors.New("disk full")
	}))

	assert.Equal(t, KindStorageFailure, KindOf(err))
	assert.Zero(t, env.countRows(t, &gormModels.Ban{}))

	critical := env.logs.FilterMessage("Admin mutation rolled back").FilterField(zap.String("severity", "critical"))
	require.Equal(t, 1, critical.Len())
	assert.Equal(t, u.ID, critical.All()[0].ContextMap()["user_id"])
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.MutationsTotal.WithLabelValues("ban_insert", outcomeFailed)))
}

func TestMutationCoordinator_InvalidateFailureIsNotEscalated(t *testing.T) {
	env := newTestEnv(t)
	env.invalidator.err = errFlagDown
	u := env.seedUser(t, gormModels.User{Username: "u"})

	err := env.coordinator.Run(context.Background(), insertBanMutation(u.ID, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(1), env.countRows(t, &gormModels.Ban{}))
	assert.Equal(t, 2, env.logs.FilterMessage("Failed to flag user stale").Len())
}

func TestMutationCoordinator_FlagsRelatedUsers(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})

	m := insertBanMutation(u.ID, nil)
	m.Related = func() []int64 { return []int64{0, u.ID, 42} }
	require.NoError(t, env.coordinator.Run(context.Background(), m))

	assert.Equal(t, committedFlags(u.ID, 42), env.invalidator.Flagged())
}

// consumingInvalidator flags through the real cache, then drops the first
// flag as a snapshot rebuild racing the open transaction would.
type consumingInvalidator struct {
	*common.CacheInvalidator
	cache common.CacheInterface
	calls int
}

func (c *consumingInvalidator) FlagStale(ctx context.Context, userID int64) error {
	if err := c.CacheInvalidator.FlagStale(ctx, userID); err != nil {
		return err
	}
	c.calls++
	if c.calls == 1 {
		return c.cache.Delete(ctx, common.StaleFlagKey(userID))
	}
	return nil
}

func TestMutationCoordinator_FlagRaisedAgainAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})
	cache := common.NewCacheService(time.Hour, time.Hour)
	inv := &consumingInvalidator{CacheInvalidator: common.NewCacheInvalidator(cache, time.Hour, nil), cache: cache}
	coordinator := NewMutationCoordinator(env.db, env.factory, inv, env.metrics, zap.NewNop().Sugar())

	require.NoError(t, coordinator.Run(context.Background(), insertBanMutation(u.ID, nil)))

	assert.Equal(t, 2, inv.calls)
	flagged, err := cache.Exists(context.Background(), common.StaleFlagKey(u.ID))
	require.NoError(t, err)
	assert.True(t, flagged)
}

func TestMutationCoordinator_UnchangedStateSkipsFlag(t *testing.T) {
	env := newTestEnv(t)

	err := env.coordinator.Run(context.Background(), Mutation{
		Name:   "ban_remove",
		UserID: 3,
		Persist: func(context.Context, *Ledgers) (bool, error) {
			return false, nil
		},
	})
	require.NoError(t, err)
	assert.Empty(t, env.invalidator.Flagged())
}

func TestMutationCoordinator_CommitFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.ErrorLevel)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	inv := &recordingInvalidator{}
	factory := NewLedgerFactory(entities.DefaultSubscriptionTypes("destiny.gg"), "destiny.gg", fixedClock)
	coordinator := NewMutationCoordinator(conn, factory, inv, reg, zap.New(core).Sugar())

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	err = coordinator.Run(context.Background(), Mutation{
		Name:   "profile_update",
		UserID: 42,
		Persist: func(context.Context, *Ledgers) (bool, error) {
			return true, nil
		},
	})

	var le *LedgerError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindStorageFailure, le.Kind)
	assert.ErrorContains(t, err, "connection lost")

	entries := logs.FilterField(zap.String("severity", "critical")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].ContextMap()["user_id"])
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.MutationsTotal.WithLabelValues("profile_update", outcomeFailed)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
