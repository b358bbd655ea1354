package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "personaforge/pkg/domain-errors"
)

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates domain errors into HTTP responses; anything else is
// an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		writeJSON(w, dErrors.ToHTTPStatus(de.Code), errorResponse{
			Error:       string(de.Code),
			Description: de.Message,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: string(dErrors.CodeInternal),
	})
}
