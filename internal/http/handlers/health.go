package handlers

import (
	"net/http"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// NewHealthzHandler reporta liveness. No toca backends.
func NewHealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

// NewReadyzHandler reporta readiness: responde 503 si postgres o redis no
// contestan.
func NewReadyzHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c.Ready != nil {
			if err := c.Ready(); err != nil {
				logger.From(r.Context()).Warn("readiness check failed", logger.Err(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}
