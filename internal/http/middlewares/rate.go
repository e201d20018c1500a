package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/rate"
)

// setRateHeaders escribe los headers estándar de rate limit.
func setRateHeaders(w http.ResponseWriter, limit int64, remaining int64, retryAfter time.Duration) {
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	if retryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	}
}

// WithRateLimit aplica un limiter por clave derivada del request.
// Fail-open: si el limiter es nil o el backend falla (Redis caído), el
// request pasa. Preferimos degradar el límite antes que tirar el servicio.
func WithRateLimit(lim rate.Limiter, max int64, keyFn func(r *http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lim == nil {
				next.ServeHTTP(w, r)
				return
			}

			res, err := lim.Allow(r.Context(), keyFn(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				rateLimitedInc()
				setRateHeaders(w, max, 0, res.RetryAfter)
				errors.WriteError(w, errors.ErrRateLimited)
				return
			}

			setRateHeaders(w, max, res.Remaining, 0)
			next.ServeHTTP(w, r)
		})
	}
}

// IPKey es la clave por defecto: prefijo semántico + IP del cliente.
func IPKey(prefix string) func(r *http.Request) string {
	return func(r *http.Request) string {
		return prefix + ":" + ClientIP(r)
	}
}

// PrincipalKey clava por usuario autenticado, cayendo a IP para anónimos.
func PrincipalKey(prefix string) func(r *http.Request) string {
	return func(r *http.Request) string {
		if p := GetPrincipal(r.Context()); p != nil {
			return prefix + ":" + p.UserID
		}
		return prefix + ":" + ClientIP(r)
	}
}
