package pg

import (
	"context"
	"encoding/json"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

// Profiles retorna el repositorio de perfiles de provider.
func (s *Store) Profiles() repository.ProviderProfileRepository { return &profileRepo{s} }

type profileRepo struct{ s *Store }

func (r *profileRepo) GetByID(ctx context.Context, profileID string) (*repository.ProviderProfile, error) {
	const q = `
		SELECT id, tenant_id, user_id, full_name, title, specialties, languages,
		       bio, education, phone, email, office_hours, license_no, internal_note,
		       visibility, created_at, updated_at
		FROM provider_profiles WHERE id = $1`

	var p repository.ProviderProfile
	var visibility []byte
	err := r.s.pool.QueryRow(ctx, q, profileID).Scan(
		&p.ID, &p.TenantID, &p.UserID, &p.FullName, &p.Title, &p.Specialties, &p.Languages,
		&p.Bio, &p.Education, &p.Phone, &p.Email, &p.OfficeHours, &p.LicenseNo, &p.InternalNote,
		&visibility, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if len(visibility) > 0 {
		_ = json.Unmarshal(visibility, &p.Visibility)
	}
	return &p, nil
}

func (r *profileRepo) Upsert(ctx context.Context, p *repository.ProviderProfile) error {
	visibility, err := json.Marshal(p.Visibility)
	if err != nil {
		visibility = []byte("{}")
	}

	const q = `
		INSERT INTO provider_profiles
			(id, tenant_id, user_id, full_name, title, specialties, languages,
			 bio, education, phone, email, office_hours, license_no, internal_note,
			 visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name, title = EXCLUDED.title,
			specialties = EXCLUDED.specialties, languages = EXCLUDED.languages,
			bio = EXCLUDED.bio, education = EXCLUDED.education,
			phone = EXCLUDED.phone, email = EXCLUDED.email,
			office_hours = EXCLUDED.office_hours, license_no = EXCLUDED.license_no,
			internal_note = EXCLUDED.internal_note, visibility = EXCLUDED.visibility,
			updated_at = NOW()`

	_, err = r.s.pool.Exec(ctx, q,
		p.ID, p.TenantID, p.UserID, p.FullName, p.Title, p.Specialties, p.Languages,
		p.Bio, p.Education, p.Phone, p.Email, p.OfficeHours, p.LicenseNo, p.InternalNote,
		visibility,
	)
	return mapError(err)
}
