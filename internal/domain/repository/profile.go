package repository

import (
	"context"
	"time"
)

// ProviderProfile es el perfil público/portal de un profesional de salud.
// Qué campos ve cada viewer lo decide internal/visibility, no este paquete.
type ProviderProfile struct {
	ID           string
	TenantID     string
	UserID       string
	FullName     string
	Title        string
	Specialties  []string
	Languages    []string
	Bio          string
	Education    string
	Phone        string
	Email        string
	OfficeHours  string
	LicenseNo    string
	InternalNote string

	// Visibility permite overrides por registro: campo -> tag
	// ("public" | "portal" | "private"). Si un campo no aparece acá,
	// aplica el tag del esquema estático.
	Visibility map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record proyecta el perfil como mapa campo->valor con los nombres JSON que
// consumen los portales. Es la entrada del filtro de visibilidad.
func (p *ProviderProfile) Record() map[string]any {
	return map[string]any{
		"id":            p.ID,
		"tenant_id":     p.TenantID,
		"user_id":       p.UserID,
		"full_name":     p.FullName,
		"title":         p.Title,
		"specialties":   p.Specialties,
		"languages":     p.Languages,
		"bio":           p.Bio,
		"education":     p.Education,
		"phone":         p.Phone,
		"email":         p.Email,
		"office_hours":  p.OfficeHours,
		"license_no":    p.LicenseNo,
		"internal_note": p.InternalNote,
	}
}

// ProviderProfileRepository define acceso a perfiles de providers.
type ProviderProfileRepository interface {
	// GetByID obtiene un perfil. ErrNotFound si no existe.
	GetByID(ctx context.Context, profileID string) (*ProviderProfile, error)

	// Upsert crea o reemplaza un perfil (usado por seeds y sync del portal).
	Upsert(ctx context.Context, p *ProviderProfile) error
}
