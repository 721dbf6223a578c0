package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// ClaudeService generates chat completions through the Anthropic API
type ClaudeService struct {
	config    *common.LLMConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

var _ interfaces.LLMService = (*ClaudeService)(nil)

// convertMessagesToClaude maps the conversation history to Claude's message
// format. System messages are extracted separately for the System parameter;
// the first one wins. At least one user message is required.
func convertMessagesToClaude(messages []interfaces.ChatMessage) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == models.RoleUser {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case models.RoleAssistant:
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a Claude-backed generation service
func NewClaudeService(config *common.LLMConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if logger == nil {
		logger = common.GetLogger()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for the claude provider (set ANTHROPIC_API_KEY or llm.api_key in config)")
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}

	timeout := 2 * time.Minute
	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid llm timeout '%s': %w", config.Timeout, err)
		}
		timeout = parsed
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	service := &ClaudeService{
		config:    config,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Float32("temperature", config.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Chat generates a completion for the given conversation history
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	response, err := s.generateCompletion(timeoutCtx, messages)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Claude chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed")

	return response, nil
}

// ModelName returns the configured generation model identifier
func (s *ClaudeService) ModelName() string { return s.config.Model }

// HealthCheck performs a lightweight completion probe
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	response, err := s.generateCompletion(probeCtx, []interfaces.ChatMessage{
		{Role: models.RoleUser, Content: "Reply with the single word: ok"},
	})
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("Claude health check returned empty response")
	}
	return nil
}

func (s *ClaudeService) generateCompletion(ctx context.Context, messages []interfaces.ChatMessage) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	response := collectClaudeText(resp.Content)
	if response == "" {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response, nil
}

// collectClaudeText concatenates the text variants of the response content
// blocks, skipping tool-use and thinking blocks
func collectClaudeText(blocks []anthropic.ContentBlockUnion) string {
	var response strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	return response.String()
}
