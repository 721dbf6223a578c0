package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/services/assembler"
	"github.com/RainingDaemons/chateai/internal/services/rag"
)

// SearchHandler exposes raw retrieval over HTTP
type SearchHandler struct {
	manager *rag.Manager
	logger  arbor.ILogger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(manager *rag.Manager, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		manager: manager,
		logger:  logger,
	}
}

// SearchHandler handles GET /api/search?q=...&k=... requests
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	topK := 0
	if k := r.URL.Query().Get("k"); k != "" {
		parsed, err := strconv.Atoi(k)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "Query parameter 'k' must be a positive integer")
			return
		}
		topK = parsed
	}

	hits, err := h.manager.Retrieve(r.Context(), query, topK)
	if err != nil {
		h.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		WriteError(w, http.StatusInternalServerError, "Search failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"hits":    hits,
		"context": assembler.BuildContext(hits),
	})
}
