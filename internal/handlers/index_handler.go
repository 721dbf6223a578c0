package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/services/rag"
)

// IndexHandler exposes index rebuild and status operations
type IndexHandler struct {
	manager *rag.Manager
	logger  arbor.ILogger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(manager *rag.Manager, logger arbor.ILogger) *IndexHandler {
	return &IndexHandler{
		manager: manager,
		logger:  logger,
	}
}

// RebuildHandler handles POST /api/index/rebuild requests. With ?async=1 the
// rebuild runs in the background and the response is an immediate 202.
func (h *IndexHandler) RebuildHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if r.URL.Query().Get("async") == "1" {
		// Detached from the request context: the rebuild outlives this request
		h.manager.ReindexAsync(context.Background())
		WriteJSON(w, http.StatusAccepted, map[string]string{
			"status":  "started",
			"message": "Background reindex started",
		})
		return
	}

	stats, err := h.manager.ReindexSync(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Reindex failed")
		WriteError(w, http.StatusInternalServerError, "Reindex failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "completed",
		"documents": stats.Documents,
		"chunks":    stats.Chunks,
		"duration":  stats.Duration.String(),
	})
}

// StatusHandler handles GET /api/index/status requests
func (h *IndexHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"vectors": h.manager.Count(),
		"model":   h.manager.Model(),
	})
}
