package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// =================================================================================
// AUTHENTICATION / AUTHORIZATION MIDDLEWARES
// =================================================================================

// WithPrincipal resuelve la sesión del request y deja el principal (o nil) en
// el contexto. NO corta requests anónimos: eso lo deciden los gates de abajo.
// Un error del resolver (storage caído, secret ausente) sí corta con 500.
func WithPrincipal(resolver *authz.Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r)
			if err != nil {
				logger.From(r.Context()).Error("session resolution failed", logger.Err(err))
				errors.WriteError(w, errors.ErrAuthentication.WithCause(err))
				return
			}
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}

			// Además del principal, enriquecemos el logger del contexto para
			// que todo lo que se loguee aguas abajo lleve al usuario.
			ctx := WithPrincipalCtx(r.Context(), p)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(
				logger.UserID(p.UserID),
				logger.Role(string(p.Role)),
				logger.TenantID(p.TenantID),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles corta el request si el principal no tiene alguno de los roles.
// Debe usarse después de WithPrincipal.
func RequireRoles(roles ...authz.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authz.RequireRole(GetPrincipal(r.Context()), roles...)
			if !res.Authorized() {
				errors.WriteError(w, res.Denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability corta el request si el principal no tiene la capability.
// Forma preferida para endpoints nuevos (ver authz.Capability).
func RequireCapability(cap authz.Capability) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authz.RequireCapability(GetPrincipal(r.Context()), cap)
			if !res.Authorized() {
				errors.WriteError(w, res.Denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
