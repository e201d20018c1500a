package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores de validación de service tokens. Son fallos esperados de auth:
// el resolver los traduce a "sin principal", nunca a un 500.
var (
	ErrInvalidToken   = errors.New("invalid service token")
	ErrWrongIssuer    = errors.New("wrong issuer")
	ErrWrongAudience  = errors.New("wrong audience")
	ErrMissingSubject = errors.New("missing subject")

	// ErrNoSecret es un error de CONFIGURACIÓN (secret ausente), no de auth.
	ErrNoSecret = errors.New("service token secret not configured")
)

// Claims son las claims de un service token válido.
type Claims struct {
	Subject  string // user ID en cuyo nombre actúa el servicio
	Email    string
	Role     string
	TenantID string
	Service  string // nombre del servicio emisor ("portal-api", "scheduler", ...)
}

// Service firma y valida service tokens (HS256 con secret compartido).
// Los portales backend los usan para llamadas service-to-service.
type Service struct {
	Secret   []byte
	Iss      string
	Aud      string
	TokenTTL time.Duration
}

// New crea un Service. TTL default: 10 minutos.
func New(secret []byte, iss, aud string) *Service {
	return &Service{Secret: secret, Iss: iss, Aud: aud, TokenTTL: 10 * time.Minute}
}

// Issue emite un token para actuar en nombre de un usuario.
func (s *Service) Issue(c Claims) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrNoSecret
	}
	if c.Subject == "" {
		return "", ErrMissingSubject
	}
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"iss":    s.Iss,
		"aud":    s.Aud,
		"sub":    c.Subject,
		"iat":    now.Unix(),
		"exp":    now.Add(s.TokenTTL).Unix(),
		"email":  c.Email,
		"role":   c.Role,
		"tenant": c.TenantID,
		"svc":    c.Service,
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(s.Secret)
}

// Verify valida firma, expiración, issuer y audience; devuelve las claims.
// Cualquier fallo esperado retorna un error de auth (nunca panic).
func (s *Service) Verify(raw string) (*Claims, error) {
	if len(s.Secret) == 0 {
		return nil, ErrNoSecret
	}

	keyfunc := func(t *jwtv5.Token) (any, error) { return s.Secret, nil }

	tok, err := jwtv5.Parse(raw, keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if iss, _ := claims["iss"].(string); s.Iss != "" && iss != s.Iss {
		return nil, ErrWrongIssuer
	}
	if aud, _ := claims["aud"].(string); s.Aud != "" && aud != s.Aud {
		return nil, ErrWrongAudience
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSubject
	}

	out := &Claims{Subject: sub}
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	out.TenantID, _ = claims["tenant"].(string)
	out.Service, _ = claims["svc"].(string)
	return out, nil
}
