// Package support implementa el ciclo de vida de las solicitudes de support
// access (pending -> approved | denied | expired) y la impersonación de
// superadmin. Ambas son excepciones temporales y consentidas al aislamiento
// de tenants.
package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/caregate/internal/audit"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	apperrors "github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// DigitalSignature es el payload de consentimiento del usuario objetivo.
// Los tres campos son obligatorios para aprobar.
type DigitalSignature struct {
	SignatureData string
	SignedAt      time.Time
	ConsentText   string
}

// Complete reporta si la firma trae todos los campos.
func (s DigitalSignature) Complete() bool {
	return strings.TrimSpace(s.SignatureData) != "" &&
		!s.SignedAt.IsZero() &&
		strings.TrimSpace(s.ConsentText) != ""
}

// Notifier avisa al usuario objetivo que hay una solicitud esperando su
// consentimiento. Best-effort: un fallo no aborta la creación.
type Notifier interface {
	SupportAccessRequested(ctx context.Context, toEmail string, req *repository.SupportRequest) error
}

// Service maneja solicitudes de support access.
type Service struct {
	Requests repository.SupportRequestRepository
	Users    repository.UserRepository
	Audit    *audit.Emitter
	Notify   Notifier

	// AccessTTL es cuánto dura un grant aprobado. Default: 4h.
	AccessTTL time.Duration

	// Now permite inyectar el reloj en tests. Si es nil usa time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return 4 * time.Hour
}

// EffectiveStatus computa el estado real de una solicitud al momento dado.
// Una solicitud approved cuyo ExpiresAt ya pasó es expired para autorización,
// aunque el campo guardado todavía diga approved (no hay sweep de fondo).
func EffectiveStatus(req *repository.SupportRequest, now time.Time) string {
	if req.Status == repository.SupportStatusApproved && req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return repository.SupportStatusExpired
	}
	return req.Status
}

// Create registra una solicitud nueva de un superadmin.
//
//   - purpose vacío => 400 INVALID_PURPOSE
//   - targetUserID (si viene) debe existir => 404 USER_NOT_FOUND
//
// Dispara la notificación al usuario objetivo best-effort y audita la creación.
func (s *Service) Create(ctx context.Context, requester *authz.Principal, targetTenantID, targetUserID, purpose string) (*repository.SupportRequest, error) {
	if strings.TrimSpace(purpose) == "" {
		return nil, apperrors.ErrInvalidPurpose
	}
	if strings.TrimSpace(targetTenantID) == "" {
		return nil, apperrors.ErrMissingFields.WithDetail("targetTenantId es requerido")
	}

	req := &repository.SupportRequest{
		ID:             uuid.NewString(),
		RequesterID:    requester.UserID,
		TargetTenantID: targetTenantID,
		Purpose:        strings.TrimSpace(purpose),
		Status:         repository.SupportStatusPending,
		CreatedAt:      s.now(),
	}

	var targetEmail string
	if tid := strings.TrimSpace(targetUserID); tid != "" {
		target, err := s.Users.GetByID(ctx, tid)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, err
		}
		req.TargetUserID = &target.ID
		targetEmail = target.Email
	}

	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	if s.Notify != nil && targetEmail != "" {
		if err := s.Notify.SupportAccessRequested(ctx, targetEmail, req); err != nil {
			logger.From(ctx).Warn("no se pudo notificar la solicitud de support access",
				logger.Err(err),
				logger.GrantID(req.ID),
			)
		}
	}

	s.Audit.Emit(ctx, repository.AuditEntry{
		TenantID:   targetTenantID,
		UserID:     requester.UserID,
		Action:     "support_access.create",
		Resource:   "support_request",
		ResourceID: req.ID,
		Details:    map[string]any{"purpose": req.Purpose, "target_user_id": targetUserID},
	})

	return req, nil
}

// Approve transiciona pending -> approved con el consentimiento del usuario
// objetivo y arranca el reloj de expiración.
//
//   - solicitud inexistente          => 404 REQUEST_NOT_FOUND
//   - status distinto de pending     => 409 REQUEST_NOT_PENDING
//   - firma incompleta               => 400 INVALID_SIGNATURE_FORMAT
//   - approver != usuario objetivo   => 403 APPROVAL_FORBIDDEN
//
// El superadmin solicitante nunca puede aprobar su propia solicitud.
func (s *Service) Approve(ctx context.Context, approver *authz.Principal, requestID string, sig DigitalSignature) (*repository.SupportRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}

	now := s.now()
	if EffectiveStatus(req, now) != repository.SupportStatusPending {
		return nil, apperrors.ErrRequestNotPending
	}

	if !sig.Complete() {
		return nil, apperrors.ErrInvalidSignature
	}

	// Solo el usuario objetivo puede consentir. Una solicitud a nivel tenant
	// (sin target user) no tiene a quién pedirle firma: se rechaza igual.
	if req.TargetUserID == nil || approver == nil || approver.UserID != *req.TargetUserID {
		return nil, apperrors.ErrApprovalForbidden
	}

	expires := now.Add(s.accessTTL())
	req.Status = repository.SupportStatusApproved
	req.SignatureData = &sig.SignatureData
	req.SignedAt = &sig.SignedAt
	req.ConsentText = &sig.ConsentText
	req.ExpiresAt = &expires

	if err := s.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	s.Audit.Emit(ctx, repository.AuditEntry{
		TenantID:   req.TargetTenantID,
		UserID:     approver.UserID,
		Action:     "support_access.approve",
		Resource:   "support_request",
		ResourceID: req.ID,
		Details:    map[string]any{"expires_at": expires},
	})

	return req, nil
}

// Deny transiciona pending -> denied por decisión explícita del usuario objetivo.
func (s *Service) Deny(ctx context.Context, actor *authz.Principal, requestID string) (*repository.SupportRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}

	if EffectiveStatus(req, s.now()) != repository.SupportStatusPending {
		return nil, apperrors.ErrRequestNotPending
	}
	if req.TargetUserID == nil || actor == nil || actor.UserID != *req.TargetUserID {
		return nil, apperrors.ErrApprovalForbidden
	}

	req.Status = repository.SupportStatusDenied
	if err := s.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	s.Audit.Emit(ctx, repository.AuditEntry{
		TenantID:   req.TargetTenantID,
		UserID:     actor.UserID,
		Action:     "support_access.deny",
		Resource:   "support_request",
		ResourceID: req.ID,
	})

	return req, nil
}

// List retorna las últimas solicitudes con su estado efectivo ya computado.
func (s *Service) List(ctx context.Context, limit int) ([]repository.SupportRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	reqs, err := s.Requests.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range reqs {
		reqs[i].Status = EffectiveStatus(&reqs[i], now)
	}
	return reqs, nil
}
