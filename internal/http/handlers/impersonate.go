package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/http/middlewares"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

type ImpersonateRequest struct {
	UserID string `json:"userId"`
}

type ImpersonateResponse struct {
	TargetUserID string    `json:"targetUserId"`
	TargetEmail  string    `json:"targetEmail"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// NewImpersonateStartHandler inicia una impersonación sobre el usuario dado.
// POST /api/admin/impersonate
func NewImpersonateStartHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImpersonateRequest
		if !readStrictJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			errors.WriteError(w, errors.ErrMissingFields.WithDetail("userId es requerido"))
			return
		}

		actor := middlewares.GetPrincipal(r.Context())
		imp, err := c.Impersonator.Start(r.Context(), actor, req.UserID)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		logger.From(r.Context()).Info("impersonation started",
			logger.UserID(actor.UserID),
			logger.TargetUserID(imp.TargetUserID),
		)
		writeJSON(w, http.StatusOK, ImpersonateResponse{
			TargetUserID: imp.TargetUserID,
			TargetEmail:  imp.TargetEmail,
			ExpiresAt:    imp.ExpiresAt,
		})
	}
}

// NewImpersonateStopHandler corta la impersonación activa. Idempotente.
// DELETE /api/admin/impersonate
func NewImpersonateStopHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImpersonateRequest
		if !readStrictJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.UserID) == "" {
			errors.WriteError(w, errors.ErrMissingFields.WithDetail("userId es requerido"))
			return
		}

		actor := middlewares.GetPrincipal(r.Context())
		if err := c.Impersonator.Stop(r.Context(), actor, req.UserID); err != nil {
			errors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "impersonación finalizada",
		})
	}
}
