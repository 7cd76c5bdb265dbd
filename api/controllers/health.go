package controllers

import (
	"net/http"

	"github.com/avaloza-dev/marketstall-backend/api/responses"
	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketStall-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a
// ping. Nil dependencies are skipped so partial deployments stay ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketStall-Env", cfg.App.Env)

		checks := map[string]db.Pinger{
			"database": database,
			"redis":    cache,
		}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
