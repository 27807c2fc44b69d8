package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/DelphiTri/website/internal/api"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/config"
	"github.com/DelphiTri/website/internal/db"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/metrics"
	"github.com/DelphiTri/website/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Admin service starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err.Error())
	}
	logging.Info("Connected to database (GORM)")

	sqlDB, err := db.InitPostgres(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err.Error())
	}
	defer sqlDB.Close()
	logging.Info("Connected to database (sqlx)")

	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" {
		redisClient = common.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, orm, sqlDB, redisClient, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Services.Cache.Close()

	upSince := time.Now()
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      routes.RegisterRoutes(deps, prometheus.DefaultGatherer, upSince),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err.Error())
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
}
