package authz

import (
	apperrors "github.com/dropDatabas3/caregate/internal/http/errors"
)

// Result es el resultado de una decisión de autorización. Exactamente una
// variante aplica: si Denied es nil el acceso fue autorizado y Principal y
// TenantID están poblados; si Denied no es nil, el caller debe cortar ahí
// y responder con ese error.
type Result struct {
	Principal *Principal
	TenantID  string
	Denied    *apperrors.AppError
}

// Authorized reporta si la decisión fue positiva.
func (r Result) Authorized() bool {
	return r.Denied == nil
}

func authorize(p *Principal) Result {
	return Result{Principal: p, TenantID: p.TenantID}
}

func deny(err *apperrors.AppError) Result {
	return Result{Denied: err}
}

// deniedForRole elige el error 403 específico según el primer rol requerido.
func deniedForRole(required Role) *apperrors.AppError {
	switch required {
	case RoleSuperadmin:
		return apperrors.ErrSuperadminAccessRequired
	case RoleClinicUser:
		return apperrors.ErrAdminAccessRequired
	case RoleProvider:
		return apperrors.ErrProviderAccessRequired
	case RolePatient:
		return apperrors.ErrPatientAccessRequired
	}
	return apperrors.ErrAdminAccessRequired
}

// RequireRole decide si el principal puede ejecutar una operación restringida
// a los roles dados. Función pura: no loguea ni toca storage.
//
//   - principal nil (sesión ausente o inválida) => 401 AUTHENTICATION_REQUIRED
//   - rol fuera del set permitido               => 403 <ROLE>_ACCESS_REQUIRED
//
// El matching usa roles canónicos (ver ParseRole), así los alias legacy
// "admin"/"provider" entran como clinic_user donde corresponde.
func RequireRole(p *Principal, allowed ...Role) Result {
	if p == nil || p.Role == "" {
		return deny(apperrors.ErrAuthenticationRequired)
	}

	role := ParseRole(string(p.Role))
	if role == "" {
		return deny(apperrors.ErrAuthenticationRequired)
	}

	for _, a := range allowed {
		if role == a {
			return authorize(p)
		}
	}

	if len(allowed) == 0 {
		return authorize(p)
	}
	return deny(deniedForRole(allowed[0]))
}

// RequireCapability decide por capability en vez de por nombre de rol.
// Es la forma preferida para endpoints nuevos (evita scope creep por alias).
func RequireCapability(p *Principal, cap Capability) Result {
	if p == nil || p.Role == "" {
		return deny(apperrors.ErrAuthenticationRequired)
	}
	if !p.Can(cap) {
		switch cap {
		case CapPlatformAdmin:
			return deny(apperrors.ErrSuperadminAccessRequired)
		case CapClinicManage:
			return deny(apperrors.ErrAdminAccessRequired)
		case CapProfileOwn:
			return deny(apperrors.ErrProviderAccessRequired)
		default:
			return deny(apperrors.ErrPatientAccessRequired)
		}
	}
	return authorize(p)
}
