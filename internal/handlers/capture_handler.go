package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/services/capture"
	"github.com/RainingDaemons/chateai/internal/services/rag"
)

// CaptureHandler persists externally fetched web pages as ingestable
// markdown and queues a reindex so they become searchable
type CaptureHandler struct {
	writer  *capture.Writer
	manager *rag.Manager
	logger  arbor.ILogger
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(writer *capture.Writer, manager *rag.Manager, logger arbor.ILogger) *CaptureHandler {
	return &CaptureHandler{
		writer:  writer,
		manager: manager,
		logger:  logger,
	}
}

// CaptureHandler handles POST /api/capture requests
func (h *CaptureHandler) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Pages []capture.CapturedPage `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		WriteError(w, http.StatusBadRequest, "Pages field is required")
		return
	}

	saved := h.writer.SaveAll(req.Pages)
	if len(saved) > 0 {
		h.manager.ReindexAsync(context.Background())
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"saved":      saved,
		"reindexing": len(saved) > 0,
	})
}
