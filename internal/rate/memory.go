package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: fixed window en memoria de proceso sobre go-cache.
// NO es un rate limiter distribuido: cada instancia cuenta por su lado.
// Aceptable solo para desarrollo; en prod usar RedisLimiter.
type MemoryLimiter struct {
	cache  *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	cacheKey := fmt.Sprintf("%s:%d", key, winStart.UnixNano())

	// Add + IncrementInt64 no son atómicos entre sí, pero go-cache serializa
	// cada operación; el peor caso es contar de más, nunca de menos.
	_ = l.cache.Add(cacheKey, int64(0), time.Until(winEnd))
	hits, err := l.cache.IncrementInt64(cacheKey, 1)
	if err != nil {
		// La key expiró entre Add e Increment: ventana nueva, arrancamos en 1.
		l.cache.Set(cacheKey, int64(1), time.Until(winEnd))
		hits = 1
	}

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   time.Until(winEnd),
	}
	if !allowed {
		res.RetryAfter = time.Until(winEnd)
	}
	return res, nil
}
