package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

// Pinger is the readiness contract backing stores implement.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the backing stores answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	deps := []struct {
		name   string
		pinger Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
