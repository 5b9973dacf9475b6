package handlers

import (
	"encoding/json"
	"net/http"

	"taskflow/backend/models"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsBadRequest(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case models.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case models.IsForbidden(err):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
