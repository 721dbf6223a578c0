package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
)

// GeminiEmbedder generates embeddings through the Gemini API with a fixed
// output dimensionality. Document batches are embedded in slices of the
// configured batch size; a query is a batch of one.
type GeminiEmbedder struct {
	config    *common.EmbeddingConfig
	logger    arbor.ILogger
	client    *genai.Client
	timeout   time.Duration
	batchSize int
}

var _ interfaces.EmbeddingService = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a Gemini-backed embedding service
func NewGeminiEmbedder(config *common.EmbeddingConfig, logger arbor.ILogger) (*GeminiEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for the gemini embedding provider (set GOOGLE_API_KEY or embedding.api_key in config)")
	}
	if config.Model == "" {
		config.Model = "gemini-embedding-001"
	}

	timeout := 2 * time.Minute
	if config.Timeout != "" {
		parsed, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding timeout '%s': %w", config.Timeout, err)
		}
		timeout = parsed
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("model", config.Model).
		Int("dimension", config.Dimension).
		Int("batch_size", batchSize).
		Msg("Gemini embedding service initialized")

	return &GeminiEmbedder{
		config:    config,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		batchSize: batchSize,
	}, nil
}

// EmbedDocuments embeds texts in batches, preserving input order. Vectors
// are unit-normalized before return.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// EmbedQuery embeds a single query via the same path with a batch of one
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.embedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	return vectors[0], nil
}

// ModelName returns the configured embedding model name
func (e *GeminiEmbedder) ModelName() string { return e.config.Model }

// Dimension returns the configured output dimensionality
func (e *GeminiEmbedder) Dimension() int { return e.config.Dimension }

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(e.config.Dimension)
	result, err := e.client.Models.EmbedContent(timeoutCtx, e.config.Model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != e.config.Dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.config.Dimension, len(emb.Values))
		}
		vectors[i] = Normalize(emb.Values)
	}

	return vectors, nil
}
