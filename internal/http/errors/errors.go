package errors

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
)

// errorResponse estructura interna para la serialización JSON.
// El envelope es el que consumen los portales: {success:false, error, message, code}.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
// En prod el Detail de errores 5xx nunca se expone al cliente.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Success: false,
		Error:   appErr.Message,
		Message: appErr.Detail,
		Code:    appErr.Code,
	}

	if appErr.HTTPStatus >= 500 && isProd() {
		resp.Message = ""
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(resp)
}

func isProd() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "prod")
}
