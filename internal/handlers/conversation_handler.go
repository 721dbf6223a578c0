package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/storage/sqlite"
)

// ConversationHandler exposes conversation CRUD over HTTP
type ConversationHandler struct {
	storage interfaces.ConversationStorage
	logger  arbor.ILogger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(storage interfaces.ConversationStorage, logger arbor.ILogger) *ConversationHandler {
	return &ConversationHandler{
		storage: storage,
		logger:  logger,
	}
}

// ConversationsHandler handles /api/conversations: GET lists, POST creates
func (h *ConversationHandler) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		conversations, err := h.storage.ListConversations(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list conversations")
			WriteError(w, http.StatusInternalServerError, "Failed to list conversations")
			return
		}
		WriteJSON(w, http.StatusOK, conversations)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		conv, err := h.storage.CreateConversation(r.Context(), req.Name)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to create conversation")
			WriteError(w, http.StatusInternalServerError, "Failed to create conversation")
			return
		}
		WriteJSON(w, http.StatusCreated, conv)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ConversationRoutes handles /api/conversations/{id} and
// /api/conversations/{id}/messages
func (h *ConversationHandler) ConversationRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Conversation id is required")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "messages" {
		h.listMessages(w, r, id)
		return
	}
	if len(parts) != 1 {
		WriteError(w, http.StatusNotFound, "Unknown conversation route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		conv, err := h.storage.GetConversation(r.Context(), id)
		if err != nil {
			h.writeStorageError(w, err, "Failed to get conversation")
			return
		}
		WriteJSON(w, http.StatusOK, conv)

	case http.MethodPut:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			WriteError(w, http.StatusBadRequest, "Name field is required")
			return
		}
		if err := h.storage.RenameConversation(r.Context(), id, req.Name); err != nil {
			h.writeStorageError(w, err, "Failed to rename conversation")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "renamed"})

	case http.MethodDelete:
		if err := h.storage.DeleteConversation(r.Context(), id); err != nil {
			h.writeStorageError(w, err, "Failed to delete conversation")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConversationHandler) listMessages(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	messages, err := h.storage.ListMessages(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Failed to list messages")
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

func (h *ConversationHandler) writeStorageError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, sqlite.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusInternalServerError, message)
}
