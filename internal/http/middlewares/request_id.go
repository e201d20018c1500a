package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/caregate/internal/audit"
)

// Middleware decora un http.Handler.
type Middleware func(http.Handler) http.Handler

const requestIDHeader = "X-Request-ID"

// WithRequestID asegura que cada request tenga un ID de correlación: respeta
// el que manda el proxy/portal en X-Request-ID y genera uno si falta. El ID
// va al contexto y al header de respuesta, para poder cruzar logs de portal
// y de caregate.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}

// WithAuditMeta deja la IP de cliente y el User-Agent en el contexto para que
// las entradas de auditoría salgan con el origen del request sin que cada
// servicio tenga que conocer *http.Request.
func WithAuditMeta() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := audit.WithRequestMeta(r.Context(), audit.RequestMeta{
				IPAddress: ClientIP(r),
				UserAgent: r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
