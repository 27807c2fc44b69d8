package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck. redisClient may be nil.
func HealthCheckHandler(db *sqlx.DB, redisClient *redis.Client, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		dbStatus := entities.ServiceStatus{Status: "ok", Details: "Database connected"}
		if err := db.PingContext(ctx); err != nil {
			dbStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["database"] = dbStatus

		if redisClient != nil {
			redisStatus := entities.ServiceStatus{Status: "ok", Details: "Redis connected"}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				redisStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
			}
			services["redis"] = redisStatus
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		common.RespondSuccess(w, start, overallStatus, resp, code)
	}
}
