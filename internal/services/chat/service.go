package chat

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/assembler"
	"github.com/RainingDaemons/chateai/internal/services/rag"
)

// Request is one chat turn. ConversationID is optional; when set, the
// conversation history is included in the prompt and both turns persist.
// UseRAG controls whether the query runs through retrieval first.
type Request struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Query          string `json:"query"`
	UseRAG         bool   `json:"use_rag"`
	TopK           int    `json:"top_k,omitempty"`
}

// Response carries the generated answer plus the retrieval hits that backed
// it (empty when RAG was off or nothing matched)
type Response struct {
	ConversationID string                `json:"conversation_id,omitempty"`
	Answer         string                `json:"answer"`
	Model          string                `json:"model"`
	Hits           []models.RetrievalHit `json:"hits,omitempty"`
}

// Service glues retrieval, prompt construction, generation, and history
// persistence together
type Service struct {
	manager       *rag.Manager
	llm           interfaces.LLMService
	conversations interfaces.ConversationStorage
	logger        arbor.ILogger
}

// NewService creates the chat service. The conversation storage may be nil,
// in which case history is neither loaded nor persisted.
func NewService(manager *rag.Manager, llm interfaces.LLMService, conversations interfaces.ConversationStorage, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		manager:       manager,
		llm:           llm,
		conversations: conversations,
		logger:        logger,
	}
}

// Chat answers one query. With RAG enabled the query is embedded, matched
// against the index, and the assembled context constrains the model; an
// empty result set degrades to the plain prompt and the model's own decline
// behavior.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	var hits []models.RetrievalHit
	var ragContext string
	if req.UseRAG {
		var err error
		hits, err = s.manager.Retrieve(ctx, req.Query, req.TopK)
		if err != nil {
			return nil, fmt.Errorf("retrieval failed: %w", err)
		}
		ragContext = assembler.BuildContext(hits)
	}

	history, err := s.loadHistory(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Chat(ctx, buildMessages(history, req.Query, ragContext))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if err := s.persistTurn(ctx, req.ConversationID, req.Query, answer); err != nil {
		// History is best-effort; the user still gets their answer
		s.logger.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("Failed to persist chat turn")
	}

	s.logger.Info().
		Str("conversation_id", req.ConversationID).
		Bool("use_rag", req.UseRAG).
		Int("hits", len(hits)).
		Int("answer_length", len(answer)).
		Msg("Chat completed")

	return &Response{
		ConversationID: req.ConversationID,
		Answer:         answer,
		Model:          s.llm.ModelName(),
		Hits:           hits,
	}, nil
}

func (s *Service) loadHistory(ctx context.Context, conversationID string) ([]*models.Message, error) {
	if conversationID == "" || s.conversations == nil {
		return nil, nil
	}
	history, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	return history, nil
}

func (s *Service) persistTurn(ctx context.Context, conversationID, query, answer string) error {
	if conversationID == "" || s.conversations == nil {
		return nil
	}
	if err := s.conversations.AddMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        query,
	}); err != nil {
		return err
	}
	return s.conversations.AddMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        answer,
	})
}
