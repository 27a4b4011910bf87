package controllers

import (
	"net/http"

	"github.com/rjnat/cursorpos-backend/api/responses"
	"github.com/rjnat/cursorpos-backend/pkg/config"
	"github.com/rjnat/cursorpos-backend/pkg/db"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
	pkgredis "github.com/rjnat/cursorpos-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CursorPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"}, "")
	}
}

// HealthReady reports ready only when the datastore answers. The cache is
// optional at boot, so a nil client is skipped rather than failed.
func HealthReady(cfg *config.Config, database *db.Client, cache *pkgredis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CursorPOS-Env", cfg.App.Env)

		if database == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := database.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}

		checks := map[string]string{"database": "ok"}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unavailable"))
				return
			}
			checks["cache"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks}, "")
	}
}
