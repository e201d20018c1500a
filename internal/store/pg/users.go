package pg

import (
	"context"
	"strings"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// Users retorna el repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	const q = `
		SELECT id, tenant_id, email, role, password_hash, disabled, created_at, updated_at
		FROM users WHERE id = $1`

	var u repository.User
	err := r.s.pool.QueryRow(ctx, q, userID).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.Role, &u.PasswordHash, &u.Disabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID, email string) (*repository.User, error) {
	const q = `
		SELECT id, tenant_id, email, role, password_hash, disabled, created_at, updated_at
		FROM users WHERE tenant_id = $1 AND lower(email) = $2`

	var u repository.User
	err := r.s.pool.QueryRow(ctx, q, tenantID, strings.ToLower(strings.TrimSpace(email))).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.Role, &u.PasswordHash, &u.Disabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	const q = `
		INSERT INTO users (id, tenant_id, email, role, password_hash, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := r.s.pool.Exec(ctx, q, u.ID, u.TenantID, strings.ToLower(u.Email), u.Role, u.PasswordHash, u.Disabled)
	return mapError(err)
}
