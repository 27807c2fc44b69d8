package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/db/dbtest"
	"github.com/DelphiTri/website/internal/metrics"
	"github.com/DelphiTri/website/internal/models/entities"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// recordingInvalidator remembers every flagged user and can be made to fail
type recordingInvalidator struct {
	mu      sync.Mutex
	flagged []int64
	err     error
}

func (r *recordingInvalidator) FlagStale(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.flagged = append(r.flagged, userID)
	return nil
}

func (r *recordingInvalidator) Flagged() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.flagged...)
}

// committedFlags is what the invalidator sees for one committed mutation:
// the users flagged inside the transaction, then again after commit.
func committedFlags(ids ...int64) []int64 {
	return append(append([]int64(nil), ids...), ids...)
}

var errFlagDown = errors.New("cache unavailable")

type testEnv struct {
	db          *gorm.DB
	factory     *LedgerFactory
	ledgers     *Ledgers
	invalidator *recordingInvalidator
	metrics     *metrics.MetricsRegistry
	logs        *observer.ObservedLogs
	coordinator *MutationCoordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.Open(t)
	factory := NewLedgerFactory(entities.DefaultSubscriptionTypes("destiny.gg"), "destiny.gg", fixedClock)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar()
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	inv := &recordingInvalidator{}

	return &testEnv{
		db:          conn,
		factory:     factory,
		ledgers:     factory.Bind(conn),
		invalidator: inv,
		metrics:     reg,
		logs:        logs,
		coordinator: NewMutationCoordinator(conn, factory, inv, reg, logger),
	}
}

func (e *testEnv) seedUser(t *testing.T, u gormModels.User) gormModels.User {
	t.Helper()
	return dbtest.SeedUser(t, e.db, u)
}

func (e *testEnv) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}
