// Package rate implementa rate limiting de ventana fija.
//
// El algoritmo es fixed window (INCR + EXPIRE): ráfagas en el borde de la
// ventana se aceptan como imprecisión conocida. El backend Redis hace que el
// contador sea compartido entre instancias; el de memoria es solo para dev.
package rate

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es el veredicto de un intento contra el limiter.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter cuenta intentos por clave dentro de la ventana vigente.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter comparte el contador entre instancias del servicio. La clave
// incluye el inicio de la ventana, así la rotación no necesita limpieza: las
// claves viejas expiran solas.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)
	winEnd := winStart.Add(l.window)
	// UnixNano: con Unix() a secos dos ventanas sub-segundo caerían en la
	// misma clave y compartirían contador.
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, winStart.UnixNano())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX: solo setea el TTL en el primer hit de la ventana
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	hits := incr.Val()
	res := Result{
		Allowed:     hits <= l.max,
		Remaining:   max64(l.max-hits, 0),
		CurrentHits: hits,
		WindowTTL:   winEnd.Sub(now),
	}
	if !res.Allowed {
		res.RetryAfter = winEnd.Sub(now)
	}
	return res, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
