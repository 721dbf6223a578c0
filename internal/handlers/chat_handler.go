package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/services/chat"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *chat.Service
	llm         interfaces.LLMService
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, llm interfaces.LLMService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		llm:         llm,
		logger:      logger,
	}
}

// ChatHandler handles POST /api/chat requests
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		WriteError(w, http.StatusBadRequest, "Query field is required")
		return
	}

	response, err := h.chatService.Chat(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate chat response")
		WriteError(w, http.StatusInternalServerError, "Failed to generate response: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// HealthHandler handles GET /api/chat/health requests
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.llm.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
			"model":   h.llm.ModelName(),
			"error":   err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": true,
		"model":   h.llm.ModelName(),
	})
}
