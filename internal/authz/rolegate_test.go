package authz

import "testing"

func TestParseRole_Aliases(t *testing.T) {
	cases := map[string]Role{
		"patient":     RolePatient,
		"provider":    RoleProvider,
		"clinic_user": RoleClinicUser,
		"admin":       RoleClinicUser, // alias legacy
		"super_admin": RoleSuperadmin,
		"SUPER_ADMIN": RoleSuperadmin,
		" clinic_user ": RoleClinicUser,
		"":         "",
		"operator": "",
	}
	for raw, want := range cases {
		if got := ParseRole(raw); got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRequireRole_Anonymous(t *testing.T) {
	res := RequireRole(nil, RoleClinicUser)
	if res.Authorized() {
		t.Fatal("anónimo no debería pasar")
	}
	if res.Denied.HTTPStatus != 401 || res.Denied.Code != "AUTHENTICATION_REQUIRED" {
		t.Fatalf("esperaba 401 AUTHENTICATION_REQUIRED, got %d %s", res.Denied.HTTPStatus, res.Denied.Code)
	}
}

func TestRequireRole_UnknownRole(t *testing.T) {
	p := &Principal{UserID: "u1", Role: "ghost"}
	res := RequireRole(p, RoleClinicUser)
	if res.Authorized() {
		t.Fatal("rol desconocido no debería pasar")
	}
	if res.Denied.HTTPStatus != 401 {
		t.Fatalf("esperaba 401, got %d", res.Denied.HTTPStatus)
	}
}

func TestRequireRole_Denied403(t *testing.T) {
	cases := []struct {
		required Role
		code     string
	}{
		{RoleSuperadmin, "SUPERADMIN_ACCESS_REQUIRED"},
		{RoleClinicUser, "ADMIN_ACCESS_REQUIRED"},
		{RoleProvider, "PROVIDER_ACCESS_REQUIRED"},
		{RolePatient, "PATIENT_ACCESS_REQUIRED"},
	}
	for _, c := range cases {
		p := &Principal{UserID: "u1", Role: "ghost_role"}
		// forzamos un rol válido que no matchea el requerido
		p.Role = RolePatient
		if c.required == RolePatient {
			p.Role = RoleProvider
		}
		res := RequireRole(p, c.required)
		if res.Authorized() {
			t.Fatalf("%s: no debería pasar", c.required)
		}
		if res.Denied.HTTPStatus != 403 || res.Denied.Code != c.code {
			t.Fatalf("%s: esperaba 403 %s, got %d %s", c.required, c.code, res.Denied.HTTPStatus, res.Denied.Code)
		}
	}
}

func TestRequireRole_LegacyAdminAlias(t *testing.T) {
	// una sesión vieja con role="admin" entra donde se pide clinic_user
	p := &Principal{UserID: "u1", Role: "admin"}
	res := RequireRole(p, RoleClinicUser)
	if !res.Authorized() {
		t.Fatalf("alias admin debería pasar como clinic_user: %v", res.Denied)
	}
}

func TestRequireRole_EmptyAllowedMeansAuthenticated(t *testing.T) {
	p := &Principal{UserID: "u1", Role: RolePatient}
	if res := RequireRole(p); !res.Authorized() {
		t.Fatalf("autenticado debería pasar sin roles requeridos: %v", res.Denied)
	}
	if res := RequireRole(nil); res.Authorized() {
		t.Fatal("anónimo no debería pasar ni sin roles requeridos")
	}
}

func TestRequireCapability(t *testing.T) {
	super := &Principal{UserID: "s1", Role: RoleSuperadmin}
	clinic := &Principal{UserID: "c1", Role: RoleClinicUser}
	patient := &Principal{UserID: "p1", Role: RolePatient}

	if res := RequireCapability(super, CapPlatformAdmin); !res.Authorized() {
		t.Fatalf("superadmin debería tener CapPlatformAdmin: %v", res.Denied)
	}
	if res := RequireCapability(clinic, CapPlatformAdmin); res.Authorized() {
		t.Fatal("clinic_user no debería tener CapPlatformAdmin")
	} else if res.Denied.Code != "SUPERADMIN_ACCESS_REQUIRED" {
		t.Fatalf("esperaba SUPERADMIN_ACCESS_REQUIRED, got %s", res.Denied.Code)
	}
	if res := RequireCapability(clinic, CapClinicManage); !res.Authorized() {
		t.Fatalf("clinic_user debería tener CapClinicManage: %v", res.Denied)
	}
	if res := RequireCapability(patient, CapClinicManage); res.Authorized() {
		t.Fatal("patient no debería tener CapClinicManage")
	}
	if res := RequireCapability(nil, CapPortalRead); res.Authorized() {
		t.Fatal("anónimo no debería tener capabilities")
	}
}
