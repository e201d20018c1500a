package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/http/errors"
	"github.com/dropDatabas3/caregate/internal/http/middlewares"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
	"github.com/dropDatabas3/caregate/internal/visibility"
)

// NewProviderProfileHandler sirve el perfil de un provider filtrado por
// visibilidad. El endpoint es público: un request anónimo recibe solo los
// campos public; el viewer sube según la sesión y el tenant.
// GET /api/providers/{providerId}
func NewProviderProfileHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := chi.URLParam(r, "providerId")

		profile, err := c.Profiles.GetByID(r.Context(), providerID)
		if err != nil {
			if repository.IsNotFound(err) {
				errors.WriteError(w, errors.ErrProfileNotFound)
				return
			}
			errors.WriteError(w, err)
			return
		}

		p := middlewares.GetPrincipal(r.Context())
		viewer, err := resolveViewer(r, c, p, profile)
		if err != nil {
			errors.WriteError(w, err)
			return
		}

		logger.From(r.Context()).Debug("provider profile served",
			logger.ResourceID(profile.ID),
			logger.TenantID(profile.TenantID),
			logger.Any("viewer", string(viewer)),
		)
		writeJSON(w, http.StatusOK, visibility.Filter(profile.Record(), profile.Visibility, viewer))
	}
}

// resolveViewer deriva el nivel de visibilidad del request sobre el perfil.
//
//   - sin sesión                          => public
//   - provider dueño del perfil           => owner
//   - clinic_user del mismo tenant        => admin
//   - superadmin con grant vigente        => admin
//   - autenticado del mismo tenant        => portal (patient)
//   - autenticado de OTRO tenant          => public (degrada, no 403: el
//     endpoint sirve el directorio público igual que a un anónimo)
func resolveViewer(r *http.Request, c *app.Container, p *authz.Principal, profile *repository.ProviderProfile) (visibility.Viewer, error) {
	if p == nil {
		return visibility.ViewerPublic, nil
	}

	if p.IsSuperadmin() {
		// CheckUser y no Check: un grant acotado a un usuario puntual solo
		// eleva la vista sobre el perfil de ESE usuario, no sobre todo el
		// tenant.
		ok, err := c.Tenants.CheckUser(r.Context(), p, profile.TenantID, profile.UserID)
		if err != nil {
			return "", err
		}
		if ok {
			return visibility.ViewerAdmin, nil
		}
		return visibility.ViewerPublic, nil
	}

	if p.TenantID != profile.TenantID {
		return visibility.ViewerPublic, nil
	}

	if p.Can(authz.CapProfileOwn) && p.UserID == profile.UserID {
		return visibility.ViewerOwner, nil
	}
	if p.Can(authz.CapClinicManage) {
		return visibility.ViewerAdmin, nil
	}
	return visibility.ViewerPatient, nil
}
