package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/audit"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/config"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/rate"
	"github.com/dropDatabas3/caregate/internal/security/token"
	"github.com/dropDatabas3/caregate/internal/support"
)

// ===== fakes =====

type fakeUsers struct{ byID map[string]*repository.User }

func (f *fakeUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) GetByEmail(_ context.Context, tenantID, email string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) Create(_ context.Context, u *repository.User) error { return nil }

type fakeSessions struct{}

func (f *fakeSessions) GetByIDHash(_ context.Context, h string) (*repository.Session, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeSessions) Create(_ context.Context, s *repository.Session) error        { return nil }
func (f *fakeSessions) UpdateActivity(_ context.Context, h string, _ time.Time) error { return nil }
func (f *fakeSessions) DeleteExpired(_ context.Context) (int, error)                 { return 0, nil }

type fakeProfiles struct{ byID map[string]*repository.ProviderProfile }

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*repository.ProviderProfile, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeProfiles) Upsert(_ context.Context, p *repository.ProviderProfile) error { return nil }

type fakeRequests struct{ byID map[string]*repository.SupportRequest }

func (f *fakeRequests) Create(_ context.Context, req *repository.SupportRequest) error {
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}
func (f *fakeRequests) GetByID(_ context.Context, id string) (*repository.SupportRequest, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeRequests) Update(_ context.Context, req *repository.SupportRequest) error {
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}
func (f *fakeRequests) List(_ context.Context, limit int) ([]repository.SupportRequest, error) {
	var out []repository.SupportRequest
	for _, r := range f.byID {
		out = append(out, *r)
	}
	return out, nil
}
func (f *fakeRequests) FindActiveGrant(_ context.Context, requesterID, tenantID, userID string, now time.Time) (*repository.SupportRequest, error) {
	for _, r := range f.byID {
		if r.RequesterID != requesterID || r.TargetTenantID != tenantID ||
			r.Status != repository.SupportStatusApproved || r.ExpiresAt == nil || !r.ExpiresAt.After(now) {
			continue
		}
		// mismo scoping que el store: un grant acotado a un usuario solo
		// matchea la consulta por ese usuario
		if userID != "" && r.TargetUserID != nil && *r.TargetUserID != userID {
			continue
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

type fakeAudit struct{ entries []repository.AuditEntry }

func (f *fakeAudit) Insert(_ context.Context, e *repository.AuditEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}
func (f *fakeAudit) ListByTenant(_ context.Context, _ string, _ int) ([]repository.AuditEntry, error) {
	return f.entries, nil
}

type fakeDirectory struct{ byUser map[string]repository.ImpersonationMeta }

func (f *fakeDirectory) SetImpersonation(_ context.Context, userID string, meta repository.ImpersonationMeta) error {
	f.byUser[userID] = meta
	return nil
}
func (f *fakeDirectory) ClearImpersonation(_ context.Context, userID string) error {
	delete(f.byUser, userID)
	return nil
}
func (f *fakeDirectory) GetImpersonation(_ context.Context, userID string) (*repository.ImpersonationMeta, error) {
	if m, ok := f.byUser[userID]; ok {
		return &m, nil
	}
	return nil, nil
}

// ===== harness =====

type testEnv struct {
	router    http.Handler
	tokens    *token.Service
	directory *fakeDirectory
	requests  *fakeRequests
	audited   *fakeAudit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	users := &fakeUsers{byID: map[string]*repository.User{
		"u-super":    {ID: "u-super", Email: "root@plataforma.test", Role: "super_admin"},
		"u-clinic":   {ID: "u-clinic", TenantID: "t1", Email: "staff@clinica.test", Role: "clinic_user"},
		"u-provider": {ID: "u-provider", TenantID: "t1", Email: "dra@clinica.test", Role: "provider"},
		"u-patient":  {ID: "u-patient", TenantID: "t1", Email: "paciente@clinica.test", Role: "patient"},
		"u-foreign":  {ID: "u-foreign", TenantID: "t2", Email: "otro@vecino.test", Role: "patient"},
	}}

	profiles := &fakeProfiles{byID: map[string]*repository.ProviderProfile{
		"prof-2": {
			ID:          "prof-2",
			TenantID:    "t1",
			UserID:      "u-provider2",
			FullName:    "Dr. Juan Pérez",
			Title:       "Clínico",
			Specialties: []string{"clínica médica"},
			Languages:   []string{"es"},
			Phone:       "+54 11 5555-0001",
			LicenseNo:   "MN 54321",
		},
		"prof-1": {
			ID:          "prof-1",
			TenantID:    "t1",
			UserID:      "u-provider",
			FullName:    "Dra. Ana García",
			Title:       "Cardióloga",
			Specialties: []string{"cardiología"},
			Languages:   []string{"es"},
			Bio:         "bio pública",
			Education:   "UBA",
			Phone:       "+54 11 5555-0000",
			Email:       "dra@clinica.test",
			OfficeHours: "lun-vie",
			LicenseNo:   "MN 12345",
		},
	}}

	requests := &fakeRequests{byID: map[string]*repository.SupportRequest{}}
	directory := &fakeDirectory{byUser: map[string]repository.ImpersonationMeta{}}

	tokens := token.New([]byte("secret-de-test"), cfg.Auth.ServiceToken.Issuer, cfg.Auth.ServiceToken.Audience)

	audited := &fakeAudit{}
	auditor := &audit.Emitter{Repo: audited}
	supportSvc := &support.Service{Requests: requests, Users: users, Audit: auditor}
	impersonator := &support.Impersonator{Users: users, Directory: directory, Audit: auditor}

	c := &app.Container{
		Cfg:      cfg,
		Users:    users,
		Sessions: &fakeSessions{},
		Profiles: profiles,
		Resolver: &authz.Resolver{Sessions: &fakeSessions{}, Users: users, Tokens: tokens},
		Tenants:  &authz.TenantChecker{Grants: requests, Env: "prod"},
		Support:  supportSvc,

		Impersonator: impersonator,
		Audit:        auditor,
	}

	return &testEnv{router: NewRouter(c), tokens: tokens, directory: directory, requests: requests, audited: audited}
}

// bearer emite un service token para el usuario dado.
func (e *testEnv) bearer(t *testing.T, userID, role, tenantID string) string {
	t.Helper()
	raw, err := e.tokens.Issue(token.Claims{Subject: userID, Role: role, TenantID: tenantID, Service: "test"})
	require.NoError(t, err)
	return "Bearer " + raw
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("User-Agent", "portal-web/2.1")
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		r.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// ===== ops =====

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, 200, w.Code)
}

func TestReadyz_FailingBackend(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/readyz", "", nil)
	// sin Ready configurado responde ok
	assert.Equal(t, 200, w.Code)
}

// ===== providers =====

func TestProviderProfile_PublicViewer(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/providers/prof-1", "", nil)
	require.Equal(t, 200, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Dra. Ana García", body["full_name"])
	assert.Contains(t, body, "specialties")
	assert.NotContains(t, body, "phone")
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "license_no")
	assert.NotContains(t, body, "internal_note")
}

func TestProviderProfile_PatientSameTenantSeesPortal(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/providers/prof-1", env.bearer(t, "u-patient", "patient", "t1"), nil)
	require.Equal(t, 200, w.Code)

	body := decode(t, w)
	assert.Contains(t, body, "phone")
	assert.Contains(t, body, "email")
	assert.NotContains(t, body, "license_no")
}

func TestProviderProfile_OwnerSeesEverything(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/providers/prof-1", env.bearer(t, "u-provider", "provider", "t1"), nil)
	require.Equal(t, 200, w.Code)

	body := decode(t, w)
	assert.Contains(t, body, "license_no")
	assert.Contains(t, body, "internal_note")
}

func TestProviderProfile_CrossTenantDegradesToPublic(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/providers/prof-1", env.bearer(t, "u-foreign", "patient", "t2"), nil)
	require.Equal(t, 200, w.Code)

	body := decode(t, w)
	assert.NotContains(t, body, "phone")
	assert.Contains(t, body, "full_name")
}

func TestProviderProfile_UserScopedGrantOnlyElevatesTargetProfile(t *testing.T) {
	env := newTestEnv(t)

	// grant vigente del superadmin acotado al usuario de prof-1
	target := "u-provider"
	expires := time.Now().Add(time.Hour)
	env.requests.byID["gr-1"] = &repository.SupportRequest{
		ID:             "gr-1",
		RequesterID:    "u-super",
		TargetTenantID: "t1",
		TargetUserID:   &target,
		Purpose:        "ticket #7",
		Status:         repository.SupportStatusApproved,
		ExpiresAt:      &expires,
	}
	auth := env.bearer(t, "u-super", "super_admin", "")

	// sobre el perfil del usuario objetivo: vista admin completa
	w := env.do(t, "GET", "/api/providers/prof-1", auth, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, decode(t, w), "license_no")

	// sobre otro perfil del mismo tenant: el grant no aplica, degrada a public
	w = env.do(t, "GET", "/api/providers/prof-2", auth, nil)
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	assert.NotContains(t, body, "license_no")
	assert.NotContains(t, body, "phone")
	assert.Contains(t, body, "full_name")
}

func TestProviderProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/providers/ghost", "", nil)
	require.Equal(t, 404, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "PROFILE_NOT_FOUND", body["code"])
}

// ===== impersonation =====

func TestImpersonate_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", "", map[string]any{"userId": "u-patient"})
	require.Equal(t, 401, w.Code)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", decode(t, w)["code"])
}

func TestImpersonate_RequiresSuperadmin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", env.bearer(t, "u-clinic", "clinic_user", "t1"),
		map[string]any{"userId": "u-patient"})
	require.Equal(t, 403, w.Code)
	assert.Equal(t, "SUPERADMIN_ACCESS_REQUIRED", decode(t, w)["code"])
}

func TestImpersonate_MissingUserID(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", env.bearer(t, "u-super", "super_admin", ""),
		map[string]any{"userId": ""})
	require.Equal(t, 400, w.Code)
	assert.Equal(t, "MISSING_REQUIRED_FIELDS", decode(t, w)["code"])
}

func TestImpersonate_TargetNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", env.bearer(t, "u-super", "super_admin", ""),
		map[string]any{"userId": "ghost"})
	require.Equal(t, 404, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", decode(t, w)["code"])
}

func TestImpersonate_SuperadminTargetForbidden(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", env.bearer(t, "u-super", "super_admin", ""),
		map[string]any{"userId": "u-super"})
	require.Equal(t, 403, w.Code)
	assert.Equal(t, "IMPERSONATION_FORBIDDEN", decode(t, w)["code"])
}

func TestImpersonate_StartAndStop(t *testing.T) {
	env := newTestEnv(t)
	auth := env.bearer(t, "u-super", "super_admin", "")

	w := env.do(t, "POST", "/api/admin/impersonate", auth, map[string]any{"userId": "u-patient"})
	require.Equal(t, 200, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "u-patient", body["targetUserId"])
	assert.Equal(t, "paciente@clinica.test", body["targetEmail"])
	assert.Contains(t, body, "expiresAt")

	meta, ok := env.directory.byUser["u-patient"]
	require.True(t, ok, "la metadata de impersonación debería quedar escrita")
	assert.Equal(t, "u-super", meta.ImpersonatedBy)

	w = env.do(t, "DELETE", "/api/admin/impersonate", auth, map[string]any{"userId": "u-patient"})
	require.Equal(t, 200, w.Code)
	_, ok = env.directory.byUser["u-patient"]
	assert.False(t, ok, "la metadata debería limpiarse")
}

func TestImpersonate_AuditCarriesRequestOrigin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", env.bearer(t, "u-super", "super_admin", ""),
		map[string]any{"userId": "u-patient"})
	require.Equal(t, 200, w.Code, w.Body.String())

	require.NotEmpty(t, env.audited.entries)
	entry := env.audited.entries[len(env.audited.entries)-1]
	assert.Equal(t, "impersonation.start", entry.Action)
	// httptest fija RemoteAddr en 192.0.2.1:1234
	assert.Equal(t, "192.0.2.1", entry.IPAddress)
	assert.Equal(t, "portal-web/2.1", entry.UserAgent)
}

// ===== support access =====

func TestSupportAccess_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	auth := env.bearer(t, "u-super", "super_admin", "")

	w := env.do(t, "POST", "/api/superadmin/support-access", auth,
		map[string]any{"targetTenantId": "t1", "purpose": "  "})
	require.Equal(t, 400, w.Code)
	assert.Equal(t, "INVALID_PURPOSE", decode(t, w)["code"])
}

func TestSupportAccess_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	superAuth := env.bearer(t, "u-super", "super_admin", "")

	// crear
	w := env.do(t, "POST", "/api/superadmin/support-access", superAuth,
		map[string]any{"targetTenantId": "t1", "targetUserId": "u-patient", "purpose": "ticket #99"})
	require.Equal(t, 201, w.Code, w.Body.String())
	requestID, _ := decode(t, w)["requestId"].(string)
	require.NotEmpty(t, requestID)

	// listar (superadmin)
	w = env.do(t, "GET", "/api/superadmin/support-access", superAuth, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), requestID)

	// listar sin rol => 403
	w = env.do(t, "GET", "/api/superadmin/support-access", env.bearer(t, "u-clinic", "clinic_user", "t1"), nil)
	require.Equal(t, 403, w.Code)

	// aprobar con firma incompleta => 400
	targetAuth := env.bearer(t, "u-patient", "patient", "t1")
	w = env.do(t, "POST", "/api/superadmin/support-access/"+requestID+"/approve", targetAuth,
		map[string]any{"digitalSignature": map[string]any{"signatureData": "x"}})
	require.Equal(t, 400, w.Code)
	assert.Equal(t, "INVALID_SIGNATURE_FORMAT", decode(t, w)["code"])

	// aprobar por alguien que no es el objetivo => 403
	w = env.do(t, "POST", "/api/superadmin/support-access/"+requestID+"/approve", superAuth,
		map[string]any{"digitalSignature": map[string]any{
			"signatureData": "firma", "signedAt": time.Now().UTC(), "consentText": "autorizo",
		}})
	require.Equal(t, 403, w.Code)
	assert.Equal(t, "APPROVAL_FORBIDDEN", decode(t, w)["code"])

	// aprobar por el usuario objetivo => 200 con expiración
	w = env.do(t, "POST", "/api/superadmin/support-access/"+requestID+"/approve", targetAuth,
		map[string]any{"digitalSignature": map[string]any{
			"signatureData": "firma", "signedAt": time.Now().UTC(), "consentText": "autorizo",
		}})
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w), "expirationTimestamp")

	// re-aprobar => 409
	w = env.do(t, "POST", "/api/superadmin/support-access/"+requestID+"/approve", targetAuth,
		map[string]any{"digitalSignature": map[string]any{
			"signatureData": "firma", "signedAt": time.Now().UTC(), "consentText": "autorizo",
		}})
	require.Equal(t, 409, w.Code)
	assert.Equal(t, "REQUEST_NOT_PENDING", decode(t, w)["code"])
}

func TestSupportAccess_Deny(t *testing.T) {
	env := newTestEnv(t)
	superAuth := env.bearer(t, "u-super", "super_admin", "")

	w := env.do(t, "POST", "/api/superadmin/support-access", superAuth,
		map[string]any{"targetTenantId": "t1", "targetUserId": "u-patient", "purpose": "debug"})
	require.Equal(t, 201, w.Code)
	requestID, _ := decode(t, w)["requestId"].(string)

	w = env.do(t, "POST", "/api/superadmin/support-access/"+requestID+"/deny",
		env.bearer(t, "u-patient", "patient", "t1"), nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "denied", decode(t, w)["status"])
}

func TestSupportAccess_UnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/superadmin/support-access/ghost/deny",
		env.bearer(t, "u-patient", "patient", "t1"), nil)
	require.Equal(t, 404, w.Code)
	assert.Equal(t, "REQUEST_NOT_FOUND", decode(t, w)["code"])
}

// ===== rate limiting =====

func TestRateLimit_SensitiveEndpoints(t *testing.T) {
	env := newTestEnv(t)
	// re-armamos el router con un limiter de 1 por hora
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Rate.Sensitive.Max = 1

	users := &fakeUsers{byID: map[string]*repository.User{
		"u-super":   {ID: "u-super", Email: "root@plataforma.test", Role: "super_admin"},
		"u-patient": {ID: "u-patient", TenantID: "t1", Email: "p@x.test", Role: "patient"},
	}}
	auditor := &audit.Emitter{}
	c := &app.Container{
		Cfg:              cfg,
		Users:            users,
		Sessions:         &fakeSessions{},
		Profiles:         &fakeProfiles{byID: map[string]*repository.ProviderProfile{}},
		Resolver:         &authz.Resolver{Sessions: &fakeSessions{}, Users: users, Tokens: env.tokens},
		Tenants:          &authz.TenantChecker{Env: "prod"},
		Support:          &support.Service{Requests: &fakeRequests{byID: map[string]*repository.SupportRequest{}}, Users: users, Audit: auditor},
		Impersonator:     &support.Impersonator{Users: users, Directory: &fakeDirectory{byUser: map[string]repository.ImpersonationMeta{}}, Audit: auditor},
		Audit:            auditor,
		SensitiveLimiter: rate.NewMemoryLimiter(1, time.Hour),
	}
	router := NewRouter(c)

	do := func() *httptest.ResponseRecorder {
		body := bytes.NewBufferString(`{"userId":"u-patient"}`)
		r := httptest.NewRequest("POST", "/api/admin/impersonate", body)
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", env.bearer(t, "u-super", "super_admin", ""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	first := do()
	require.Equal(t, 200, first.Code, first.Body.String())
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Remaining"))

	second := do()
	require.Equal(t, 429, second.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &out))
	assert.Equal(t, "RATE_LIMITED", out["code"])
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

// ===== envelope =====

func TestErrorEnvelopeShape(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/admin/impersonate", "", map[string]any{"userId": "u-patient"})
	require.Equal(t, 401, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["code"])
	assert.Equal(t, "application/json; charset=utf-8", strings.ToLower(w.Header().Get("Content-Type")))
}
