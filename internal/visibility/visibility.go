// Package visibility implementa el filtro de visibilidad por campo de los
// perfiles. El esquema campo->tag es declarativo y único: lo consumen el
// filtro y cualquier auditoría de campos futura, nadie más hardcodea tags.
package visibility

import "strings"

// Tag clasifica un campo de perfil.
type Tag string

const (
	// TagPublic: visible para cualquiera, incluso sin sesión.
	TagPublic Tag = "public"
	// TagPortal: visible para usuarios autenticados del portal (pacientes).
	TagPortal Tag = "portal"
	// TagPrivate: visible solo para el dueño del perfil y admins.
	TagPrivate Tag = "private"
)

// ParseTag normaliza un tag de un override por registro.
// Retorna "" si el valor no es un tag conocido.
func ParseTag(raw string) Tag {
	switch Tag(strings.ToLower(strings.TrimSpace(raw))) {
	case TagPublic:
		return TagPublic
	case TagPortal:
		return TagPortal
	case TagPrivate:
		return TagPrivate
	}
	return ""
}

// Viewer es el rol efectivo del que mira un perfil.
type Viewer string

const (
	ViewerPublic  Viewer = "public"
	ViewerPatient Viewer = "patient"
	ViewerOwner   Viewer = "owner" // provider viendo su propio perfil
	ViewerAdmin   Viewer = "admin"
)

// Schema mapea nombre de campo -> tag. Aplica a todos los registros del tipo;
// un registro puede traer overrides puntuales (ver Filter).
type Schema map[string]Tag

// ProfileSchema es el esquema de visibilidad de perfiles de provider.
var ProfileSchema = Schema{
	"id":            TagPublic,
	"tenant_id":     TagPublic,
	"user_id":       TagPrivate,
	"full_name":     TagPublic,
	"title":         TagPublic,
	"specialties":   TagPublic,
	"languages":     TagPublic,
	"bio":           TagPublic,
	"education":     TagPortal,
	"phone":         TagPortal,
	"email":         TagPortal,
	"office_hours":  TagPortal,
	"license_no":    TagPrivate,
	"internal_note": TagPrivate,
}

// alwaysVisible son campos identificatorios que se incluyen siempre para
// sostener el discovery básico (listados de providers), sin importar el tag.
var alwaysVisible = map[string]struct{}{
	"id":          {},
	"tenant_id":   {},
	"specialties": {},
	"languages":   {},
}

// allowed reporta si un viewer puede ver un campo con el tag dado.
func allowed(v Viewer, t Tag) bool {
	switch v {
	case ViewerAdmin, ViewerOwner:
		return true
	case ViewerPatient:
		return t == TagPublic || t == TagPortal
	default:
		return t == TagPublic
	}
}

// Filter proyecta el registro dejando solo los campos que el viewer puede ver.
//
// Propiedades: es una proyección pura e independiente del orden; aplicarla dos
// veces da lo mismo que una; las keys del resultado son subconjunto de las del
// input. Campos fuera del esquema no se incluyen nunca (fail closed).
// overrides permite que un registro endurezca o relaje el tag de un campo.
func Filter(record map[string]any, overrides map[string]string, viewer Viewer) map[string]any {
	out := make(map[string]any, len(record))
	for field, value := range record {
		tag, known := ProfileSchema[field]
		if !known {
			continue
		}
		if raw, ok := overrides[field]; ok {
			if t := ParseTag(raw); t != "" {
				tag = t
			}
		}
		if _, always := alwaysVisible[field]; always {
			out[field] = value
			continue
		}
		if allowed(viewer, tag) {
			out[field] = value
		}
	}
	return out
}
