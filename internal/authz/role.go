package authz

import "strings"

// Role es el rol cerrado de un principal.
type Role string

const (
	RolePatient    Role = "patient"
	RoleProvider   Role = "provider"
	RoleClinicUser Role = "clinic_user"
	RoleSuperadmin Role = "super_admin"
)

// roleAliases mapea roles legacy a su rol canónico. Los portales viejos
// todavía emiten "admin" para staff de clínica.
var roleAliases = map[string]Role{
	"admin": RoleClinicUser,
}

// ParseRole normaliza un rol de storage/claims a su forma canónica.
// Retorna "" si el rol no pertenece al set cerrado.
func ParseRole(raw string) Role {
	s := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := roleAliases[s]; ok {
		return canonical
	}
	switch Role(s) {
	case RolePatient, RoleProvider, RoleClinicUser, RoleSuperadmin:
		return Role(s)
	}
	return ""
}

// =================================================================================
// CAPABILITIES
// =================================================================================

// Capability es un permiso puntual que un endpoint puede exigir. Los endpoints
// declaran capabilities en vez de comparar nombres de rol, para que los alias
// legacy no habiliten scope por accidente.
type Capability string

const (
	// CapClinicManage: operaciones de staff de clínica (pacientes, agenda, perfiles).
	CapClinicManage Capability = "clinic:manage"
	// CapPortalRead: lectura del portal de pacientes.
	CapPortalRead Capability = "portal:read"
	// CapProfileOwn: gestión del perfil propio de un provider.
	CapProfileOwn Capability = "profile:own"
	// CapPlatformAdmin: consola de superadmin (impersonación, support access).
	CapPlatformAdmin Capability = "platform:admin"
)

// roleCapabilities es el set de capabilities por rol canónico.
// Nota: provider incluye clinic:manage porque históricamente el rol "provider"
// operaba endpoints de clínica; el alias queda explícito acá y en ningún otro lado.
var roleCapabilities = map[Role]map[Capability]struct{}{
	RolePatient: {
		CapPortalRead: {},
	},
	RoleProvider: {
		CapPortalRead:   {},
		CapProfileOwn:   {},
		CapClinicManage: {},
	},
	RoleClinicUser: {
		CapPortalRead:   {},
		CapClinicManage: {},
	},
	RoleSuperadmin: {
		CapPortalRead:    {},
		CapClinicManage:  {},
		CapPlatformAdmin: {},
	},
}

// Can reporta si el rol tiene la capability dada.
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}
