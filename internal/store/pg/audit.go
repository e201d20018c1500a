package pg

import (
	"context"
	"encoding/json"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// Audit retorna el sink de auditoría append-only.
func (s *Store) Audit() repository.AuditRepository { return &auditRepo{s} }

type auditRepo struct{ s *Store }

func (r *auditRepo) Insert(ctx context.Context, e *repository.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		details = []byte("{}")
	}

	const q = `
		INSERT INTO audit_log
			(id, tenant_id, user_id, action, resource, resource_id, details, ip_address, user_agent, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.s.pool.Exec(ctx, q,
		e.ID, e.TenantID, e.UserID, e.Action, e.Resource, e.ResourceID, details, e.IPAddress, e.UserAgent, e.Timestamp,
	)
	return mapError(err)
}

func (r *auditRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]repository.AuditEntry, error) {
	const q = `
		SELECT id, tenant_id, user_id, action, resource, resource_id, details, ip_address, user_agent, ts
		FROM audit_log WHERE tenant_id = $1 ORDER BY ts DESC LIMIT $2`

	rows, err := r.s.pool.Query(ctx, q, tenantID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []repository.AuditEntry
	for rows.Next() {
		var e repository.AuditEntry
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&details, &e.IPAddress, &e.UserAgent, &e.Timestamp,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(details, &e.Details)
		out = append(out, e)
	}
	return out, rows.Err()
}
