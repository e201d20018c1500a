// Package audit emite registros de auditoría best-effort: un fallo escribiendo
// auditoría se loguea y se cuenta, pero jamás cambia el resultado de la
// operación primaria.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

var writeFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "audit_write_failures_total",
	Help: "Escrituras de auditoría que fallaron (la operación primaria no se afecta)",
})

// RegisterMetrics registra las métricas del paquete. Idempotente vía registry.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(writeFailures); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.L().Warn("no se pudo registrar métrica de audit", logger.Err(err))
		}
	}
}

// Emitter persiste entradas de auditoría en el sink configurado.
type Emitter struct {
	Repo repository.AuditRepository

	// Now permite inyectar el reloj en tests. Si es nil usa time.Now.
	Now func() time.Time
}

func (e *Emitter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Emit escribe una entrada de auditoría. Se llama DESPUÉS de que la mutación
// primaria ya fue confirmada. No retorna error: si el insert falla se loguea
// con contexto y se incrementa audit_write_failures_total.
func (e *Emitter) Emit(ctx context.Context, entry repository.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.now()
	}

	// IP y user agent vienen del middleware vía contexto; un valor seteado
	// explícitamente por el caller gana.
	meta := MetaFrom(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = meta.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = meta.UserAgent
	}

	if e.Repo == nil {
		// Sin sink configurado (tests, dev sin DB): solo log estructurado.
		logger.From(ctx).Info("audit",
			logger.Action(entry.Action),
			logger.Resource(entry.Resource),
			logger.ResourceID(entry.ResourceID),
			logger.TenantID(entry.TenantID),
			logger.UserID(entry.UserID),
		)
		return
	}

	if err := e.Repo.Insert(ctx, &entry); err != nil {
		writeFailures.Inc()
		logger.From(ctx).Error("audit write failed",
			logger.Err(err),
			logger.Action(entry.Action),
			logger.Resource(entry.Resource),
			logger.ResourceID(entry.ResourceID),
			logger.TenantID(entry.TenantID),
			logger.UserID(entry.UserID),
		)
	}
}
