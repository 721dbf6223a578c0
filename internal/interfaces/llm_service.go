package interfaces

import (
	"context"
)

// ChatMessage is one prompt turn handed to a generation provider
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// LLMService generates text from a conversation history. The retrieval core
// never calls this directly; only the chat surface does.
type LLMService interface {
	// Chat generates a completion for the given message history
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ModelName returns the configured generation model identifier
	ModelName() string

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error
}
