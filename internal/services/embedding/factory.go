package embedding

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
)

// NewService creates the embedding service configured by the embedding
// provider setting. Supported providers: "local", "gemini".
func NewService(config *common.EmbeddingConfig, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "local", "":
		logger.Info().
			Str("model", config.Model).
			Int("dimension", config.Dimension).
			Msg("Local embedding service initialized")
		return NewLocalEmbedder(config.Model, config.Dimension), nil
	case "gemini":
		return NewGeminiEmbedder(config, logger)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: local, gemini)", config.Provider)
	}
}
