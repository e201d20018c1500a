package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/http/middlewares"
	"github.com/dropDatabas3/caregate/internal/support"
)

type SupportAccessCreateRequest struct {
	TargetTenantID string `json:"targetTenantId"`
	TargetUserID   string `json:"targetUserId,omitempty"`
	Purpose        string `json:"purpose"`
}

type DigitalSignatureDTO struct {
	SignatureData string    `json:"signatureData"`
	SignedAt      time.Time `json:"signedAt"`
	ConsentText   string    `json:"consentText"`
}

type SupportAccessApproveRequest struct {
	DigitalSignature DigitalSignatureDTO `json:"digitalSignature"`
}

type SupportAccessItem struct {
	RequestID      string     `json:"requestId"`
	RequesterID    string     `json:"requesterId"`
	TargetTenantID string     `json:"targetTenantId"`
	TargetUserID   *string    `json:"targetUserId,omitempty"`
	Purpose        string     `json:"purpose"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

func toSupportItem(req *repository.SupportRequest, now time.Time) SupportAccessItem {
	return SupportAccessItem{
		RequestID:      req.ID,
		RequesterID:    req.RequesterID,
		TargetTenantID: req.TargetTenantID,
		TargetUserID:   req.TargetUserID,
		Purpose:        req.Purpose,
		Status:         support.EffectiveStatus(req, now),
		CreatedAt:      req.CreatedAt,
		ExpiresAt:      req.ExpiresAt,
	}
}

// NewSupportAccessCreateHandler registra una solicitud de acceso de soporte.
// POST /api/superadmin/support-access
func NewSupportAccessCreateHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SupportAccessCreateRequest
		if !readStrictJSON(w, r, &req) {
			return
		}

		requester := middlewares.GetPrincipal(r.Context())
		created, err := c.Support.Create(r.Context(), requester, req.TargetTenantID, req.TargetUserID, req.Purpose)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"requestId": created.ID,
		})
	}
}

// NewSupportAccessListHandler lista solicitudes con su estado efectivo.
// GET /api/superadmin/support-access
func NewSupportAccessListHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqs, err := c.Support.List(r.Context(), 100)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		now := time.Now().UTC()
		items := make([]SupportAccessItem, 0, len(reqs))
		for i := range reqs {
			items = append(items, toSupportItem(&reqs[i], now))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"requests": items,
		})
	}
}

// NewSupportAccessApproveHandler aprueba una solicitud con la firma del
// usuario objetivo.
// POST /api/superadmin/support-access/{requestId}/approve
func NewSupportAccessApproveHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestId")

		var req SupportAccessApproveRequest
		if !readStrictJSON(w, r, &req) {
			return
		}

		approver := middlewares.GetPrincipal(r.Context())
		sig := support.DigitalSignature{
			SignatureData: req.DigitalSignature.SignatureData,
			SignedAt:      req.DigitalSignature.SignedAt,
			ConsentText:   req.DigitalSignature.ConsentText,
		}
		approved, err := c.Support.Approve(r.Context(), approver, requestID, sig)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"expirationTimestamp": approved.ExpiresAt,
		})
	}
}

// NewSupportAccessDenyHandler rechaza una solicitud pendiente.
// POST /api/superadmin/support-access/{requestId}/deny
func NewSupportAccessDenyHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestId")

		actor := middlewares.GetPrincipal(r.Context())
		denied, err := c.Support.Deny(r.Context(), actor, requestID)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"requestId": denied.ID,
			"status":    denied.Status,
		})
	}
}
