package authz

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
	apperrors "github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// DemoTenantID es el tenant sentinel para entornos no productivos.
// En dev un principal sin tenant cae acá en vez de romper el request;
// en prod la misma condición es fail-closed (500 MISSING_TENANT_ID).
const DemoTenantID = "tenant_demo"

// TenantChecker decide si un principal puede tocar recursos de un tenant.
// La única excepción cross-tenant es un support access grant vigente.
type TenantChecker struct {
	Grants repository.SupportRequestRepository

	// Env es el entorno de la app ("dev" | "staging" | "prod").
	Env string

	// Now permite inyectar el reloj en tests. Si es nil usa time.Now.
	Now func() time.Time
}

func (c *TenantChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

func (c *TenantChecker) isProd() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "prod")
}

// Check retorna true si el principal puede acceder a recursos del tenant dado.
//
//   - mismo tenant => true
//   - superadmin con grant approved y no expirado para ese tenant => true
//   - resto => false
//
// Un principal sin tenant es un error de configuración en prod (fail closed,
// MISSING_TENANT_ID); en dev cae al tenant demo con un warning. La asimetría
// es intencional: desbloquea desarrollo local sin debilitar el aislamiento
// productivo.
func (c *TenantChecker) Check(ctx context.Context, p *Principal, resourceTenantID string) (bool, error) {
	if p == nil {
		return false, nil
	}

	principalTenant := p.TenantID
	if principalTenant == "" && !p.IsSuperadmin() {
		if c.isProd() {
			return false, apperrors.ErrMissingTenantID
		}
		logger.From(ctx).Warn("principal sin tenant, usando tenant demo",
			logger.UserID(p.UserID),
			logger.TenantID(DemoTenantID),
		)
		principalTenant = DemoTenantID
	}

	if principalTenant == resourceTenantID && resourceTenantID != "" {
		return true, nil
	}

	// Cross-tenant: solo superadmin con grant vigente.
	if !p.IsSuperadmin() || c.Grants == nil {
		return false, nil
	}

	grant, err := c.Grants.FindActiveGrant(ctx, p.UserID, resourceTenantID, "", c.now())
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}

// CheckUser es como Check pero a nivel usuario: para grants que fueron
// acotados a un usuario puntual, el acceso solo vale contra ese usuario.
func (c *TenantChecker) CheckUser(ctx context.Context, p *Principal, resourceTenantID, resourceUserID string) (bool, error) {
	if p == nil {
		return false, nil
	}
	if p.TenantID == resourceTenantID && resourceTenantID != "" {
		return true, nil
	}
	if !p.IsSuperadmin() || c.Grants == nil {
		return c.Check(ctx, p, resourceTenantID)
	}
	grant, err := c.Grants.FindActiveGrant(ctx, p.UserID, resourceTenantID, resourceUserID, c.now())
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}
