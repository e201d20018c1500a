package pg

import (
	"context"
	"time"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// SupportRequests retorna el repositorio de solicitudes de soporte.
func (s *Store) SupportRequests() repository.SupportRequestRepository { return &supportRepo{s} }

type supportRepo struct{ s *Store }

const supportCols = `id, requester_id, target_tenant_id, target_user_id, purpose, status,
       signature_data, signed_at, consent_text, created_at, expires_at`

func scanSupport(row interface{ Scan(...any) error }) (*repository.SupportRequest, error) {
	var req repository.SupportRequest
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.TargetTenantID, &req.TargetUserID, &req.Purpose, &req.Status,
		&req.SignatureData, &req.SignedAt, &req.ConsentText, &req.CreatedAt, &req.ExpiresAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &req, nil
}

func (r *supportRepo) Create(ctx context.Context, req *repository.SupportRequest) error {
	const q = `
		INSERT INTO support_access_requests
			(id, requester_id, target_tenant_id, target_user_id, purpose, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.s.pool.Exec(ctx, q,
		req.ID, req.RequesterID, req.TargetTenantID, req.TargetUserID, req.Purpose, req.Status, req.CreatedAt,
	)
	return mapError(err)
}

func (r *supportRepo) GetByID(ctx context.Context, id string) (*repository.SupportRequest, error) {
	const q = `SELECT ` + supportCols + ` FROM support_access_requests WHERE id = $1`
	return scanSupport(r.s.pool.QueryRow(ctx, q, id))
}

func (r *supportRepo) Update(ctx context.Context, req *repository.SupportRequest) error {
	const q = `
		UPDATE support_access_requests
		SET status = $2, signature_data = $3, signed_at = $4, consent_text = $5, expires_at = $6
		WHERE id = $1`

	_, err := r.s.pool.Exec(ctx, q,
		req.ID, req.Status, req.SignatureData, req.SignedAt, req.ConsentText, req.ExpiresAt,
	)
	return mapError(err)
}

func (r *supportRepo) List(ctx context.Context, limit int) ([]repository.SupportRequest, error) {
	const q = `SELECT ` + supportCols + ` FROM support_access_requests
		ORDER BY created_at DESC LIMIT $1`

	rows, err := r.s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []repository.SupportRequest
	for rows.Next() {
		req, err := scanSupport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// FindActiveGrant: el estado efectivo se computa acá mismo contra expires_at,
// no contra el campo status (que puede seguir diciendo approved ya vencido).
func (r *supportRepo) FindActiveGrant(ctx context.Context, requesterID, tenantID, userID string, now time.Time) (*repository.SupportRequest, error) {
	const q = `SELECT ` + supportCols + ` FROM support_access_requests
		WHERE requester_id = $1
		  AND target_tenant_id = $2
		  AND status = 'approved'
		  AND expires_at > $3
		  AND ($4 = '' OR target_user_id IS NULL OR target_user_id = $4)
		ORDER BY expires_at DESC LIMIT 1`

	req, err := scanSupport(r.s.pool.QueryRow(ctx, q, requesterID, tenantID, now, userID))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}
