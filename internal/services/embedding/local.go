package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/RainingDaemons/chateai/internal/interfaces"
)

// LocalEmbedder is a deterministic, offline feature-hashing embedder: tokens
// are hashed into a fixed-dimension term-frequency vector which is then
// unit-normalized. It needs no model download or network access, which makes
// it the default provider and the test workhorse. Vectors are only
// comparable to vectors produced with the same model name and dimension.
type LocalEmbedder struct {
	model     string
	dimension int
}

var _ interfaces.EmbeddingService = (*LocalEmbedder)(nil)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// NewLocalEmbedder creates a feature-hashing embedder with the given model
// tag and output dimension
func NewLocalEmbedder(model string, dimension int) *LocalEmbedder {
	if model == "" {
		model = "hash-v1"
	}
	if dimension <= 0 {
		dimension = 384
	}
	return &LocalEmbedder{
		model:     model,
		dimension: dimension,
	}
}

// EmbedDocuments generates one unit vector per input text
func (e *LocalEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

// EmbedQuery embeds a single query through the same path as documents
func (e *LocalEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// ModelName returns the configured model tag
func (e *LocalEmbedder) ModelName() string { return e.model }

// Dimension returns the output vector size
func (e *LocalEmbedder) Dimension() int { return e.dimension }

func (e *LocalEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New64a()
		h.Write([]byte(token))
		vec[h.Sum64()%uint64(e.dimension)]++
	}
	return Normalize(vec)
}
