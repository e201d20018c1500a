package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/dropDatabas3/caregate/internal/authz"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxPrincipalKey guarda el principal resuelto
	ctxPrincipalKey ctxKey = "principal"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithPrincipalCtx inyecta el principal en el contexto.
func WithPrincipalCtx(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetPrincipal obtiene el principal del contexto.
// Retorna nil si no hay sesión resuelta (anónimo).
func GetPrincipal(ctx context.Context) *authz.Principal {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if p, ok := v.(*authz.Principal); ok {
			return p
		}
	}
	return nil
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ClientIP extrae la IP real del cliente (X-Forwarded-For o RemoteAddr).
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
