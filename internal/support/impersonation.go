package support

import (
	"context"
	"time"

	"github.com/dropDatabas3/caregate/internal/audit"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	apperrors "github.com/dropDatabas3/caregate/internal/http/errors"
)

// ImpersonationTTL es cuánto dura una impersonación. Más corta que un support
// access grant: acá el superadmin actúa COMO el usuario, no solo lo mira.
const ImpersonationTTL = time.Hour

// Impersonation es el resultado de iniciar una impersonación.
type Impersonation struct {
	TargetUserID string
	TargetEmail  string
	ExpiresAt    time.Time
}

// Impersonator inicia y corta impersonaciones anotando metadata en el
// identity provider externo.
type Impersonator struct {
	Users     repository.UserRepository
	Directory repository.DirectoryRepository
	Audit     *audit.Emitter

	// Now permite inyectar el reloj en tests. Si es nil usa time.Now.
	Now func() time.Time
}

func (im *Impersonator) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now().UTC()
}

// Start inicia una impersonación del actor (superadmin) sobre el usuario dado.
//
//   - target inexistente  => 404 USER_NOT_FOUND
//   - target superadmin   => 403 IMPERSONATION_FORBIDDEN (siempre, sin excepción)
//
// Escribe impersonated_by/impersonated_at en el directorio y audita.
func (im *Impersonator) Start(ctx context.Context, actor *authz.Principal, targetUserID string) (*Impersonation, error) {
	target, err := im.Users.GetByID(ctx, targetUserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if authz.ParseRole(target.Role) == authz.RoleSuperadmin {
		return nil, apperrors.ErrImpersonationForbidden
	}

	now := im.now()
	expires := now.Add(ImpersonationTTL)
	meta := repository.ImpersonationMeta{
		ImpersonatedBy: actor.UserID,
		ImpersonatedAt: now,
		ExpiresAt:      expires,
	}
	if err := im.Directory.SetImpersonation(ctx, target.ID, meta); err != nil {
		return nil, err
	}

	im.Audit.Emit(ctx, repository.AuditEntry{
		TenantID:   target.TenantID,
		UserID:     actor.UserID,
		Action:     "impersonation.start",
		Resource:   "user",
		ResourceID: target.ID,
		Details:    map[string]any{"target_email": target.Email, "expires_at": expires},
	})

	return &Impersonation{
		TargetUserID: target.ID,
		TargetEmail:  target.Email,
		ExpiresAt:    expires,
	}, nil
}

// Stop corta la impersonación activa sobre el usuario dado. Idempotente:
// limpiar metadata inexistente no es error.
func (im *Impersonator) Stop(ctx context.Context, actor *authz.Principal, targetUserID string) error {
	target, err := im.Users.GetByID(ctx, targetUserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if err := im.Directory.ClearImpersonation(ctx, target.ID); err != nil {
		return err
	}

	im.Audit.Emit(ctx, repository.AuditEntry{
		TenantID:   target.TenantID,
		UserID:     actor.UserID,
		Action:     "impersonation.stop",
		Resource:   "user",
		ResourceID: target.ID,
	})

	return nil
}
