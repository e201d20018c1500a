package repository

import (
	"context"
	"time"
)

// AuditEntry es un registro append-only de una acción sensible.
// Nunca se muta después de creado.
type AuditEntry struct {
	ID         string
	TenantID   string
	UserID     string
	Action     string // ej: "impersonation.start", "support_access.approve"
	Resource   string // ej: "user", "support_request"
	ResourceID string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	Timestamp  time.Time
}

// AuditRepository define el sink de auditoría.
type AuditRepository interface {
	// Insert agrega una entrada. El caller decide qué hacer ante un error
	// (el emitter lo traga y solo lo loguea).
	Insert(ctx context.Context, e *AuditEntry) error

	// ListByTenant retorna las últimas entradas de un tenant.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]AuditEntry, error)
}
