// Package app arma el contenedor de dependencias que comparten los handlers.
// No tiene lógica propia: es cableado.
package app

import (
	"github.com/dropDatabas3/caregate/internal/audit"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/config"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/rate"
	"github.com/dropDatabas3/caregate/internal/support"
)

type Container struct {
	Cfg *config.Config

	// Repositorios
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Profiles repository.ProviderProfileRepository

	// Servicios
	Resolver     *authz.Resolver
	Tenants      *authz.TenantChecker
	Support      *support.Service
	Impersonator *support.Impersonator
	Audit        *audit.Emitter

	// Limiters: API aplica a todo /api, Sensitive a impersonación y
	// support access (ventana más chica).
	Limiter          rate.Limiter
	SensitiveLimiter rate.Limiter

	// Ready reporta si los backends (postgres, redis) responden.
	// Lo consume /readyz.
	Ready func() error
}
