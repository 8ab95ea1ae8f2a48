package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves liveness and readiness probes.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers probe routes on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.handleLiveness)
	mux.HandleFunc("/readiness", h.handleReadiness)
}

func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	results, healthy := h.manager.Check(r.Context())

	status := http.StatusOK
	overall := StatusHealthy
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = StatusUnhealthy
	}
	writeJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
