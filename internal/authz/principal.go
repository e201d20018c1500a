package authz

// Principal es el actor autenticado de un request. Se construye al resolver
// la sesión, es inmutable durante el request y no se cachea entre requests.
type Principal struct {
	UserID   string
	Email    string
	Role     Role
	TenantID string // vacío para superadmins (no pertenecen a un tenant)
}

// IsSuperadmin reporta si el principal es superadministrador.
func (p *Principal) IsSuperadmin() bool {
	return p != nil && p.Role == RoleSuperadmin
}

// Can reporta si el principal tiene la capability dada.
func (p *Principal) Can(c Capability) bool {
	if p == nil {
		return false
	}
	return p.Role.Can(c)
}
