package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente por defecto
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando el error original.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail agrega detalles adicionales al error (útil para validaciones)
// Devuelve una COPIA del error para no mutar las variables globales base
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa)
// Devuelve una COPIA del error
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// 400 Bad Request - Validación
// ---------------------------------------------------------------------------------

var (
	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "La solicitud contiene parámetros inválidos.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_REQUIRED_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidPurpose = &AppError{
		Code:       "INVALID_PURPOSE",
		Message:    "La solicitud de support access requiere un propósito no vacío.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidSignature = &AppError{
		Code:       "INVALID_SIGNATURE_FORMAT",
		Message:    "La firma digital está incompleta o mal formada.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// 401 / 403 - Autenticación y Autorización
// ---------------------------------------------------------------------------------

var (
	ErrAuthenticationRequired = &AppError{
		Code:       "AUTHENTICATION_REQUIRED",
		Message:    "Se requiere una sesión autenticada.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAdminAccessRequired = &AppError{
		Code:       "ADMIN_ACCESS_REQUIRED",
		Message:    "Se requiere rol de administrador de clínica.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrSuperadminAccessRequired = &AppError{
		Code:       "SUPERADMIN_ACCESS_REQUIRED",
		Message:    "Se requiere rol de superadministrador.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrProviderAccessRequired = &AppError{
		Code:       "PROVIDER_ACCESS_REQUIRED",
		Message:    "Se requiere rol de provider.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrPatientAccessRequired = &AppError{
		Code:       "PATIENT_ACCESS_REQUIRED",
		Message:    "Se requiere rol de paciente.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrTenantAccessDenied = &AppError{
		Code:       "TENANT_ACCESS_DENIED",
		Message:    "El recurso pertenece a otro tenant.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrImpersonationForbidden = &AppError{
		Code:       "IMPERSONATION_FORBIDDEN",
		Message:    "No se puede impersonar a un superadministrador.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrApprovalForbidden = &AppError{
		Code:       "APPROVAL_FORBIDDEN",
		Message:    "Solo el usuario objetivo puede aprobar esta solicitud.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 / 409 - Recursos
// ---------------------------------------------------------------------------------

var (
	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "El usuario no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRequestNotFound = &AppError{
		Code:       "REQUEST_NOT_FOUND",
		Message:    "La solicitud de support access no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrProfileNotFound = &AppError{
		Code:       "PROFILE_NOT_FOUND",
		Message:    "El perfil solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRequestNotPending = &AppError{
		Code:       "REQUEST_NOT_PENDING",
		Message:    "La solicitud ya fue resuelta.",
		HTTPStatus: http.StatusConflict,
	}

	ErrAlreadyExists = &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    "El recurso ya existe.",
		HTTPStatus: http.StatusConflict,
	}
)

// ---------------------------------------------------------------------------------
// 429 / 500 / 503 - Límites, Configuración y Backend
// ---------------------------------------------------------------------------------

var (
	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiadas solicitudes. Intentá de nuevo más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrMissingTenantID = &AppError{
		Code:       "MISSING_TENANT_ID",
		Message:    "El principal no tiene tenant asignado.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrAuthentication = &AppError{
		Code:       "AUTHENTICATION_ERROR",
		Message:    "Error interno resolviendo la sesión.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Error interno del servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBackendUnavailable = &AppError{
		Code:       "BACKEND_UNAVAILABLE",
		Message:    "El backend de datos no está disponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
