package authz

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
	"github.com/dropDatabas3/caregate/internal/security/token"
)

// DefaultSessionCookie es el nombre de la cookie de sesión que setean los portales.
const DefaultSessionCookie = "cg_session"

// Resolver resuelve el principal de un request entrante.
//
// Dos caminos:
//  1. Cookie de sesión: se hashea el valor y se busca la sesión en storage.
//  2. Authorization: Bearer <token>: service token firmado con secret
//     compartido (llamadas service-to-service de los backends de portal).
//
// Fallos esperados de autenticación (cookie ausente, sesión expirada, token
// inválido) retornan (nil, nil): nunca son errores. Solo los problemas de
// configuración (secret ausente) o de storage devuelven error.
type Resolver struct {
	Sessions repository.SessionRepository
	Users    repository.UserRepository
	Tokens   *token.Service

	// CookieName de la sesión. Default: DefaultSessionCookie.
	CookieName string

	// Now permite inyectar el reloj en tests. Si es nil usa time.Now.
	Now func() time.Time
}

func (rs *Resolver) cookieName() string {
	if rs.CookieName != "" {
		return rs.CookieName
	}
	return DefaultSessionCookie
}

func (rs *Resolver) now() time.Time {
	if rs.Now != nil {
		return rs.Now()
	}
	return time.Now().UTC()
}

// Resolve produce el principal autenticado del request, o nil si no hay.
func (rs *Resolver) Resolve(r *http.Request) (*Principal, error) {
	// Bearer tiene prioridad: un servicio puede llamar con cookie de browser
	// reenviada por proxy y un token propio; gana el token.
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); ah != "" {
		if strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			return rs.resolveBearer(r, strings.TrimSpace(ah[len("Bearer "):]))
		}
	}

	return rs.resolveCookie(r)
}

func (rs *Resolver) resolveBearer(r *http.Request, raw string) (*Principal, error) {
	if rs.Tokens == nil {
		return nil, token.ErrNoSecret
	}

	claims, err := rs.Tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrNoSecret) {
			// Error de configuración: esto sí debe explotar arriba.
			return nil, err
		}
		logger.From(r.Context()).Debug("service token rechazado", logger.Err(err))
		return nil, nil
	}

	// Subject match: si el caller declara en nombre de quién actúa, tiene que
	// coincidir con el sub del token.
	if want := strings.TrimSpace(r.Header.Get("X-Subject-ID")); want != "" && want != claims.Subject {
		logger.From(r.Context()).Warn("service token subject mismatch",
			logger.UserID(claims.Subject),
			logger.TargetUserID(want),
		)
		return nil, nil
	}

	role := ParseRole(claims.Role)
	if role == "" {
		return nil, nil
	}

	return &Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     role,
		TenantID: claims.TenantID,
	}, nil
}

func (rs *Resolver) resolveCookie(r *http.Request) (*Principal, error) {
	c, err := r.Cookie(rs.cookieName())
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return nil, nil
	}

	sess, err := rs.Sessions.GetByIDHash(r.Context(), token.SHA256Hex(c.Value))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	now := rs.now()
	if sess.RevokedAt != nil || !sess.ExpiresAt.After(now) {
		return nil, nil
	}

	u, err := rs.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if u.Disabled {
		return nil, nil
	}

	role := ParseRole(u.Role)
	if role == "" {
		return nil, nil
	}

	// Best-effort: la última actividad no bloquea la resolución.
	_ = rs.Sessions.UpdateActivity(r.Context(), sess.SessionIDHash, now)

	return &Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     role,
		TenantID: u.TenantID,
	}, nil
}
