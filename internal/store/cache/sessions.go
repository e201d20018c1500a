// Package cache decora repositorios con un cache de lectura en memoria.
// No es un cache distribuido: cada instancia cachea por su lado, y el TTL
// corto acota cuánto puede tardar en verse una revocación hecha por otra
// instancia.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// DefaultSessionTTL acota la ventana de staleness de sesiones revocadas.
const DefaultSessionTTL = 30 * time.Second

// Sessions es un read-through cache sobre un SessionRepository. Solo cachea
// GetByIDHash, que es el hot path del resolver: una lectura por request.
type Sessions struct {
	inner repository.SessionRepository
	c     *gocache.Cache
}

func NewSessions(inner repository.SessionRepository, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		inner: inner,
		c:     gocache.New(ttl, 2*ttl),
	}
}

func (s *Sessions) GetByIDHash(ctx context.Context, hash string) (*repository.Session, error) {
	if v, ok := s.c.Get(hash); ok {
		if sess, ok := v.(repository.Session); ok {
			cp := sess
			return &cp, nil
		}
	}

	sess, err := s.inner.GetByIDHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	// Se guarda una copia por valor; los callers no comparten el puntero.
	s.c.SetDefault(hash, *sess)
	cp := *sess
	return &cp, nil
}

func (s *Sessions) Create(ctx context.Context, sess *repository.Session) error {
	return s.inner.Create(ctx, sess)
}

func (s *Sessions) UpdateActivity(ctx context.Context, hash string, lastActivity time.Time) error {
	// La entrada cacheada queda con LastActivity viejo hasta que expire; la
	// resolución no depende de ese campo.
	return s.inner.UpdateActivity(ctx, hash, lastActivity)
}

func (s *Sessions) DeleteExpired(ctx context.Context) (int, error) {
	s.c.Flush()
	return s.inner.DeleteExpired(ctx)
}
