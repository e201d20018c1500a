package repository

import (
	"context"
	"time"
)

// Estados posibles de una solicitud de support access.
//
// Nota: "approved" en storage no implica autorización vigente. La expiración
// se computa al momento del check contra ExpiresAt, no con un sweep de fondo.
const (
	SupportStatusPending  = "pending"
	SupportStatusApproved = "approved"
	SupportStatusDenied   = "denied"
	SupportStatusExpired  = "expired"
)

// SupportRequest representa una solicitud de acceso de soporte: un superadmin
// pide acceso temporal a los datos de un tenant (y opcionalmente a un usuario
// puntual), con consentimiento explícito del usuario objetivo.
type SupportRequest struct {
	ID             string
	RequesterID    string // superadmin que pidió el acceso
	TargetTenantID string
	TargetUserID   *string // nil = acceso a nivel tenant
	Purpose        string
	Status         string

	// Consentimiento (solo presente si Status == approved)
	SignatureData *string
	SignedAt      *time.Time
	ConsentText   *string

	CreatedAt time.Time
	ExpiresAt *time.Time // inicio del reloj al aprobar
}

// SupportRequestRepository define operaciones sobre solicitudes de soporte.
type SupportRequestRepository interface {
	// Create persiste una solicitud nueva (status=pending).
	Create(ctx context.Context, req *SupportRequest) error

	// GetByID obtiene una solicitud. ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*SupportRequest, error)

	// Update persiste una transición de estado (approve/deny).
	Update(ctx context.Context, req *SupportRequest) error

	// List retorna solicitudes ordenadas por creación descendente.
	List(ctx context.Context, limit int) ([]SupportRequest, error)

	// FindActiveGrant busca una solicitud approved y no expirada que le dé al
	// requester acceso al tenant objetivo (y al usuario, si userID != "").
	// Retorna nil (sin error) si no hay grant vigente.
	FindActiveGrant(ctx context.Context, requesterID, tenantID, userID string, now time.Time) (*SupportRequest, error)
}
