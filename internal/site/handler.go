package site

import (
	"encoding/json"
	"net/http"
)

// Handler serves the static site endpoints.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CompanyIdentity())
}

// Company handles GET /api/company
func (h *Handler) Company(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CompanyProfile())
}

// Services handles GET /api/services
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Services())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
