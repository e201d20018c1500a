package repository

import (
	"context"
	"time"
)

// ImpersonationMeta es la metadata que el identity provider externo guarda
// sobre una impersonación activa.
type ImpersonationMeta struct {
	ImpersonatedBy string
	ImpersonatedAt time.Time
	ExpiresAt      time.Time
}

// DirectoryRepository abstrae el identity provider externo donde se anota la
// metadata de impersonación. Contrato estático: no hay lookups dinámicos de
// funciones remotas, por lo que "function not deployed" no existe como clase
// de error; un backend caído se reporta como error de conexión normal.
type DirectoryRepository interface {
	// SetImpersonation anota impersonated_by/impersonated_at en el usuario.
	SetImpersonation(ctx context.Context, userID string, meta ImpersonationMeta) error

	// ClearImpersonation borra la metadata de impersonación del usuario.
	ClearImpersonation(ctx context.Context, userID string) error

	// GetImpersonation retorna la metadata activa o nil si no hay.
	GetImpersonation(ctx context.Context, userID string) (*ImpersonationMeta, error)
}
