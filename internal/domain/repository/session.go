package repository

import (
	"context"
	"time"
)

// Session representa una sesión de portal persistida. El portal crea la
// sesión en el login; caregate solo la resuelve. La cookie transporta el
// session ID en claro y acá se guarda su hash SHA-256 (hex).
type Session struct {
	ID            string
	UserID        string
	SessionIDHash string
	IPAddress     *string
	UserAgent     *string
	CreatedAt     time.Time
	LastActivity  time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time
}

// SessionRepository define operaciones para resolver y administrar sesiones.
type SessionRepository interface {
	// GetByIDHash obtiene una sesión por el hash del session ID.
	// ErrNotFound si no existe. La expiración/revocación la evalúa el caller.
	GetByIDHash(ctx context.Context, sessionIDHash string) (*Session, error)

	// Create crea una nueva sesión (usado por seeds/tests y por caregatectl).
	Create(ctx context.Context, s *Session) error

	// UpdateActivity actualiza el timestamp de última actividad.
	UpdateActivity(ctx context.Context, sessionIDHash string, lastActivity time.Time) error

	// DeleteExpired elimina sesiones expiradas o revocadas.
	// Retorna el número de sesiones eliminadas.
	DeleteExpired(ctx context.Context) (int, error)
}
