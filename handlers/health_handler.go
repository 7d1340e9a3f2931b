package handlers

import (
	"net/http"

	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	handle *rules.Handle
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(handle *rules.Handle) *HealthHandler {
	return &HealthHandler{handle: handle}
}

// HandleHealth handles GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady handles GET /readyz. The process is ready once a policy
// engine has been published.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.handle == nil || h.handle.Current() == nil {
		_ = utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no policy loaded"})
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
