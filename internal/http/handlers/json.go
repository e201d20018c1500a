package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/caregate/internal/http/errors"
)

const maxJSONBody = 64 << 10 // 64KB

// readStrictJSON decodifica el body JSON en dst. Escribe la respuesta de
// error y retorna false si el body es inválido.
func readStrictJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if ct != "" && !strings.Contains(ct, "application/json") {
		errors.WriteError(w, errors.ErrInvalidJSON.WithDetail("se requiere Content-Type: application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		detail := "json inválido"
		if err == io.EOF {
			detail = "body vacío"
		}
		errors.WriteError(w, errors.ErrInvalidJSON.WithDetail(detail))
		return false
	}

	// No debe haber datos extra
	if dec.More() {
		errors.WriteError(w, errors.ErrInvalidJSON.WithDetail("sobran datos en el body"))
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
