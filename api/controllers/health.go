package controllers

import (
	"net/http"

	"github.com/reclaimhq/reclaim-backend/api/responses"
	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reclaim-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports whether the service can reach its backing stores.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reclaim-Env", cfg.App.Env)

		components := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "readiness: database unreachable")
				}
				components["database"] = "down"
				healthy = false
			} else {
				components["database"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "readiness: redis unreachable")
				}
				components["redis"] = "down"
				healthy = false
			} else {
				components["redis"] = "up"
			}
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status":     "degraded",
				"components": components,
			})
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status":     "ready",
			"components": components,
		})
	}
}
