package controllers

import (
	"context"
	"net/http"

	"github.com/uteshop/uteshop-backend/api/responses"
	"github.com/uteshop/uteshop-backend/pkg/config"
	"github.com/uteshop/uteshop-backend/pkg/logger"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-UTEShop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of every hard dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-UTEShop-Env", cfg.App.Env)

		checks := map[string]string{}
		ready := true
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "readiness check failed", err)
				}
				checks[name] = "down"
				ready = false
				continue
			}
			checks[name] = "up"
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}

// HealthDeps builds the readiness dependency map for the router.
func HealthDeps(db Pinger, redis Pinger) map[string]Pinger {
	return map[string]Pinger{
		"postgres": db,
		"redis":    redis,
	}
}
