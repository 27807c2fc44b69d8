package api

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/config"
	"github.com/DelphiTri/website/internal/db/repositories"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/metrics"
	"github.com/DelphiTri/website/internal/services"
)

type Repositories struct {
	Users    *repositories.UserRepositoryGORM
	Payments *repositories.PaymentRepository
}

type Services struct {
	Cache       common.CacheInterface
	Invalidator common.EntitlementInvalidator
	Session     *common.SessionService
	Signer      *common.TokenSigner
	Ledgers     *services.LedgerFactory
	Coordinator *services.MutationCoordinator
	AdminUsers  *services.AdminUserService
}

type Dependencies struct {
	Config   *config.Config
	ORM      *gorm.DB
	SQL      *sqlx.DB
	Redis    *redis.Client
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services. redisClient may be nil
// when CACHE_BACKEND=memory, in which case IP history lookups are disabled.
func InitDependencies(cfg *config.Config, orm *gorm.DB, sqlDB *sqlx.DB, redisClient *redis.Client, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	var (
		cacheSvc  common.CacheInterface
		ipHistory common.IPHistory = common.NoopIPHistory{}
	)
	switch cfg.Cache.Backend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis cache backend selected but no client configured")
		}
		cacheSvc = common.NewRedisCacheService(redisClient)
		ipHistory = common.NewRedisIPHistory(redisClient)
	default:
		cacheSvc = common.NewCacheService(cfg.Cache.DefaultTTL, cfg.Cache.CleanupInterval)
	}

	repos := &Repositories{
		Users:    repositories.NewUserRepositoryGORM(orm),
		Payments: repositories.NewPaymentRepository(sqlDB),
	}

	logger := logging.GetLogger()
	ledgers := services.NewLedgerFactory(cfg.Commerce.SubscriptionTypes, cfg.Commerce.DefaultSource, time.Now)
	// Flags outlive the snapshot they guard
	invalidator := common.NewCacheInvalidator(cacheSvc, cfg.Auth.SnapshotTTL, metricsReg)
	coordinator := services.NewMutationCoordinator(orm, ledgers, invalidator, metricsReg, logger)
	snapshots := services.NewEntitlementSnapshotSource(orm, ledgers, time.Now)

	svcs := &Services{
		Cache:       cacheSvc,
		Invalidator: invalidator,
		Session:     common.NewSessionService(cacheSvc, snapshots, cfg.Auth.SnapshotTTL, metricsReg, logger),
		Signer:      common.NewTokenSigner([]byte(cfg.Auth.JWTSecret)),
		Ledgers:     ledgers,
		Coordinator: coordinator,
		AdminUsers:  services.NewAdminUserService(orm, ledgers, coordinator, repos.Payments, ipHistory, logger),
	}

	return &Dependencies{
		Config:   cfg,
		ORM:      orm,
		SQL:      sqlDB,
		Redis:    redisClient,
		Metrics:  metricsReg,
		Repo:     repos,
		Services: svcs,
	}, nil
}
