package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Chat (RAG-enabled chat)
	mux.HandleFunc("/api/chat", s.handlers.Chat.ChatHandler)
	mux.HandleFunc("/api/chat/health", s.handlers.Chat.HealthHandler)

	// API routes - Retrieval
	mux.HandleFunc("/api/search", s.handlers.Search.SearchHandler)

	// API routes - Index management
	mux.HandleFunc("/api/index/rebuild", s.handlers.Index.RebuildHandler)
	mux.HandleFunc("/api/index/status", s.handlers.Index.StatusHandler)

	// API routes - Conversations
	mux.HandleFunc("/api/conversations", s.handlers.Conversations.ConversationsHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/conversations/", s.handlers.Conversations.ConversationRoutes)  // GET/PUT/DELETE /{id}, GET /{id}/messages

	// API routes - Web page capture
	mux.HandleFunc("/api/capture", s.handlers.Capture.CaptureHandler)

	// API routes - Status
	mux.HandleFunc("/api/health", s.handlers.Status.HealthHandler)
	mux.HandleFunc("/api/version", s.handlers.Status.VersionHandler)

	return mux
}
