// internal/api/respond.go
//
// JSON response helpers and the error-to-status mapping shared by every
// handler.  Validation failures surface their message verbatim; anything
// else is logged and returned as a generic 500.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/preorder/internal/preorder"
)

// readJSON decodes a JSON body, mapping malformed input onto a
// validation error so it surfaces as a 400.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &preorder.ValidationError{Message: "Invalid payload"}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case preorder.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case preorder.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.S().Errorw("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
