package pg

import (
	"context"
	"time"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// Sessions retorna el repositorio de sesiones.
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepo{s} }

type sessionRepo struct{ s *Store }

func (r *sessionRepo) GetByIDHash(ctx context.Context, sessionIDHash string) (*repository.Session, error) {
	const q = `
		SELECT id, user_id, session_id_hash, ip_address, user_agent,
		       created_at, last_activity, expires_at, revoked_at
		FROM sessions WHERE session_id_hash = $1`

	var sess repository.Session
	err := r.s.pool.QueryRow(ctx, q, sessionIDHash).Scan(
		&sess.ID, &sess.UserID, &sess.SessionIDHash, &sess.IPAddress, &sess.UserAgent,
		&sess.CreatedAt, &sess.LastActivity, &sess.ExpiresAt, &sess.RevokedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &sess, nil
}

func (r *sessionRepo) Create(ctx context.Context, sess *repository.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, session_id_hash, ip_address, user_agent,
		                      created_at, last_activity, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.s.pool.Exec(ctx, q,
		sess.ID, sess.UserID, sess.SessionIDHash, sess.IPAddress, sess.UserAgent,
		sess.CreatedAt, sess.LastActivity, sess.ExpiresAt,
	)
	return mapError(err)
}

func (r *sessionRepo) UpdateActivity(ctx context.Context, sessionIDHash string, lastActivity time.Time) error {
	const q = `UPDATE sessions SET last_activity = $2 WHERE session_id_hash = $1`
	_, err := r.s.pool.Exec(ctx, q, sessionIDHash, lastActivity)
	return mapError(err)
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int, error) {
	const q = `DELETE FROM sessions WHERE expires_at < NOW() OR revoked_at IS NOT NULL`
	tag, err := r.s.pool.Exec(ctx, q)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}
