package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielnoveno/hackathon-hooklabai/internal/api/respond"
	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads a bounded request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve model.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.WriteBadRequest(w, ve.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "not found")
	default:
		respond.WriteInternalError(w, "internal error")
	}
}
