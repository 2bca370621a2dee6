package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bidboard/bidboard-backend/api/responses"
	"github.com/bidboard/bidboard-backend/pkg/config"
	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is any dependency that can confirm connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BidBoard-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BidBoard-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
