package repository

import (
	"context"
	"time"
)

// User representa una cuenta de la plataforma (paciente, provider, staff de
// clínica o superadmin). Las cuentas viven en el tenant que las creó; los
// superadmins no pertenecen a ningún tenant (TenantID vacío).
type User struct {
	ID           string
	TenantID     string
	Email        string
	Role         string // patient | provider | clinic_user | super_admin (legacy: admin)
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository define operaciones sobre cuentas de usuario.
type UserRepository interface {
	// GetByID obtiene un usuario por ID. ErrNotFound si no existe.
	GetByID(ctx context.Context, userID string) (*User, error)

	// GetByEmail obtiene un usuario por email dentro de un tenant.
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// Create crea un usuario. ErrConflict si el email ya existe en el tenant.
	Create(ctx context.Context, u *User) error
}
