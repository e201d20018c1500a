package pg

import (
	"context"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// Directory retorna el repositorio de metadata del identity provider.
// La metadata de impersonación se refleja en una tabla local que el sync
// con el identity provider externo consume.
func (s *Store) Directory() repository.DirectoryRepository { return &directoryRepo{s} }

type directoryRepo struct{ s *Store }

func (r *directoryRepo) SetImpersonation(ctx context.Context, userID string, meta repository.ImpersonationMeta) error {
	const q = `
		INSERT INTO user_directory_meta (user_id, impersonated_by, impersonated_at, impersonation_expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			impersonated_by = EXCLUDED.impersonated_by,
			impersonated_at = EXCLUDED.impersonated_at,
			impersonation_expires_at = EXCLUDED.impersonation_expires_at`

	_, err := r.s.pool.Exec(ctx, q, userID, meta.ImpersonatedBy, meta.ImpersonatedAt, meta.ExpiresAt)
	return mapError(err)
}

func (r *directoryRepo) ClearImpersonation(ctx context.Context, userID string) error {
	const q = `DELETE FROM user_directory_meta WHERE user_id = $1`
	_, err := r.s.pool.Exec(ctx, q, userID)
	return mapError(err)
}

func (r *directoryRepo) GetImpersonation(ctx context.Context, userID string) (*repository.ImpersonationMeta, error) {
	const q = `
		SELECT impersonated_by, impersonated_at, impersonation_expires_at
		FROM user_directory_meta WHERE user_id = $1`

	var meta repository.ImpersonationMeta
	err := r.s.pool.QueryRow(ctx, q, userID).Scan(&meta.ImpersonatedBy, &meta.ImpersonatedAt, &meta.ExpiresAt)
	if err != nil {
		err = mapError(err)
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}
