package interfaces

import (
	"context"
)

// EmbeddingService maps text to fixed-dimension unit-normalized vectors so
// that inner product equals cosine similarity.
type EmbeddingService interface {
	// EmbedDocuments generates one vector per input text, batched for
	// throughput. Order of the output matches the order of the input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates a single query vector using the same code path
	// as document embedding with a batch of one.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// ModelName identifies the configured embedding model. Index and query
	// vectors are only comparable when produced by the same model.
	ModelName() string

	// Dimension returns the model's output vector size
	Dimension() int
}
