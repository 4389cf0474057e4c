package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// parseIDParam returns the {id} path segment, validated as a UUID.
func parseIDParam(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", err
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
