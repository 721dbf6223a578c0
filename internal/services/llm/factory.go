package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
)

// NewService creates the generation service configured by the llm provider
// setting. Supported providers: "claude", "gemini".
func NewService(config *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	logger.Info().Str("provider", provider).Str("model", config.Model).Msg("Initializing LLM service")

	switch provider {
	case "claude":
		return NewClaudeService(config, logger)
	case "gemini":
		return NewGeminiService(config, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s (supported: claude, gemini)", config.Provider)
	}
}
