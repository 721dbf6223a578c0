package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
)

// StatusHandler serves health and version endpoints
type StatusHandler struct {
	logger arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{logger: logger}
}

// HealthHandler handles GET /api/health requests
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler handles GET /api/version requests
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
	})
}
