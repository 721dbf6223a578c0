package interfaces

import (
	"context"

	"github.com/RainingDaemons/chateai/internal/models"
)

// ConversationStorage persists chat history
type ConversationStorage interface {
	CreateConversation(ctx context.Context, name string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context) ([]*models.Conversation, error)
	RenameConversation(ctx context.Context, id, name string) error
	DeleteConversation(ctx context.Context, id string) error

	AddMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
}
