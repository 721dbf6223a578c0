package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// GeminiService generates chat completions through the Gemini API
type GeminiService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

var _ interfaces.LLMService = (*GeminiService)(nil)

// convertMessagesToGemini maps the conversation history to Gemini's content
// format. System messages are extracted separately for SystemInstruction;
// the first one wins. At least one user message is required.
func convertMessagesToGemini(messages []interfaces.ChatMessage) ([]*genai.Content, string, error) {
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

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case models.RoleAssistant:
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a Gemini-backed generation service
func NewGeminiService(config *common.LLMConfig, logger arbor.ILogger) (*GeminiService, error) {
	if logger == nil {
		logger = common.GetLogger()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for the gemini provider (set GOOGLE_API_KEY or llm.api_key in config)")
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}

	timeout := 2 * time.Minute
	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid llm timeout '%s': %w", config.Timeout, err)
		}
		timeout = parsed
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Float32("temperature", config.Temperature).
		Msg("Gemini LLM service initialized")

	return &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

// Chat generates a completion for the given conversation history
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.ChatMessage) (string, error) {
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
			Msg("Gemini chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini chat completion completed")

	return response, nil
}

// ModelName returns the configured generation model identifier
func (s *GeminiService) ModelName() string { return s.config.Model }

// HealthCheck performs a lightweight completion probe
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("Gemini client is not initialized")
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	response, err := s.generateCompletion(probeCtx, []interfaces.ChatMessage{
		{Role: models.RoleUser, Content: "Reply with the single word: ok"},
	})
	if err != nil {
		return fmt.Errorf("Gemini health check failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("Gemini health check returned empty response")
	}
	return nil
}

func (s *GeminiService) generateCompletion(ctx context.Context, messages []interfaces.ChatMessage) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if s.config.MaxTokens > 0 {
		config.MaxOutputTokens = int32(s.config.MaxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}

	return response.String(), nil
}
