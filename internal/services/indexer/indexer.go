package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/chunker"
)

// Stats summarizes one indexing run
type Stats struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Duration  time.Duration `json:"duration"`
}

// Service runs the full ingestion pipeline: load documents, split them into
// overlapping chunks, embed the chunk texts, and atomically rebuild the
// vector index store. A run over an empty corpus still produces a valid
// empty store.
type Service struct {
	loader   interfaces.DocumentLoader
	splitter *chunker.Splitter
	embedder interfaces.EmbeddingService
	store    interfaces.VectorIndexStore
	logger   arbor.ILogger
}

// NewService wires the pipeline stages together
func NewService(loader interfaces.DocumentLoader, splitter *chunker.Splitter, embedder interfaces.EmbeddingService, store interfaces.VectorIndexStore, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	if splitter == nil {
		splitter = chunker.New()
	}
	return &Service{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Run executes one full indexing pass over the given roots and replaces the
// store contents. The store is only touched once every chunk has embedded
// successfully, so a failed run leaves the previous index intact.
func (s *Service) Run(ctx context.Context, roots []string) (*Stats, error) {
	start := time.Now()

	s.logger.Info().
		Strs("roots", roots).
		Str("model", s.embedder.ModelName()).
		Msg("Indexing run started")

	documents := s.loader.LoadDocuments(ctx, roots)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks := s.chunkDocuments(documents)

	if len(chunks) == 0 {
		if err := s.store.Rebuild(nil, nil); err != nil {
			return nil, fmt.Errorf("failed to rebuild empty index: %w", err)
		}
		stats := &Stats{Documents: len(documents), Duration: time.Since(start)}
		s.logger.Info().
			Int("documents", stats.Documents).
			Msg("Indexing run produced no chunks, store reset to empty")
		return stats, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.store.Rebuild(chunks, vectors); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	stats := &Stats{
		Documents: len(documents),
		Chunks:    len(chunks),
		Duration:  time.Since(start),
	}

	s.logger.Info().
		Int("documents", stats.Documents).
		Int("chunks", stats.Chunks).
		Str("duration", stats.Duration.Round(time.Millisecond).String()).
		Msg("Indexing run completed")

	return stats, nil
}

// chunkDocuments splits every document and stamps each chunk with a fresh
// id, its zero-based position within the source, and the document's
// provenance fields
func (s *Service) chunkDocuments(documents []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range documents {
		pieces := s.splitter.Split(doc.Text)
		for i, text := range pieces {
			chunks = append(chunks, models.Chunk{
				ID:         common.NewChunkID(),
				Source:     doc.Path,
				ChunkID:    i,
				Text:       text,
				SourceType: doc.SourceType,
				DocName:    doc.DocName,
				URL:        doc.URL,
				CapturedAt: doc.CapturedAt,
				SiteDomain: doc.SiteDomain,
				Title:      doc.Title,
				Snippet:    doc.Snippet,
				Summary:    doc.Summary,
			})
		}
	}
	return chunks
}
