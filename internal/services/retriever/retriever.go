package retriever

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// Service answers similarity queries against a loaded index snapshot. It is
// constructed over a store that already passed EnsureValid and Load; the
// rag manager swaps whole Service instances after a rebuild.
type Service struct {
	store    interfaces.VectorIndexStore
	embedder interfaces.EmbeddingService
	logger   arbor.ILogger
}

var _ interfaces.Retriever = (*Service)(nil)

// NewService validates and loads the store, then wraps it for querying. A
// missing or damaged index pair is recreated empty, never an error.
func NewService(store interfaces.VectorIndexStore, embedder interfaces.EmbeddingService, logger arbor.ILogger) (*Service, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	if err := store.EnsureValid(); err != nil {
		return nil, fmt.Errorf("failed to validate index store: %w", err)
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load index store: %w", err)
	}

	if indexed := store.Model(); store.Count() > 0 && indexed != embedder.ModelName() {
		logger.Warn().
			Str("index_model", indexed).
			Str("query_model", embedder.ModelName()).
			Msg("Index was built with a different embedding model, scores may be meaningless until reindex")
	}

	return &Service{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Retrieve embeds the query and returns up to topK hits in
// descending-similarity order, each enriched with its metadata record. An
// empty index short-circuits before the embedding call. The whole query
// runs against one snapshot, so a rebuild landing mid-query cannot pair a
// score with a metadata record from a different index state.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievalHit, error) {
	snap := s.store.Snapshot()
	if snap.Count() == 0 {
		return nil, nil
	}
	if topK <= 0 {
		return nil, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := snap.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	results := make([]models.RetrievalHit, 0, len(hits))
	for _, hit := range hits {
		meta, ok := snap.Meta(hit.Position)
		if !ok {
			s.logger.Warn().Int("position", hit.Position).Msg("Search hit has no metadata record, skipping")
			continue
		}
		results = append(results, enrich(hit.Score, meta))
	}

	s.logger.Debug().
		Int("top_k", topK).
		Int("hits", len(results)).
		Msg("Retrieval completed")

	return results, nil
}

// enrich maps a raw hit to a RetrievalHit, filling the defaults older
// metadata records may lack: source type from provenance, doc name from the
// source path.
func enrich(score float32, meta models.Chunk) models.RetrievalHit {
	sourceType := meta.SourceType
	if sourceType == "" {
		if meta.URL != "" || meta.SiteDomain != "" {
			sourceType = models.SourceTypeSite
		} else {
			sourceType = models.SourceTypeDoc
		}
	}

	docName := meta.DocName
	if docName == "" {
		docName = filepath.Base(meta.Source)
	}

	return models.RetrievalHit{
		Score:      score,
		ID:         meta.ID,
		Source:     meta.Source,
		ChunkID:    meta.ChunkID,
		Text:       meta.Text,
		SourceType: sourceType,
		DocName:    docName,
		URL:        meta.URL,
		CapturedAt: meta.CapturedAt,
		SiteDomain: meta.SiteDomain,
		Title:      meta.Title,
		Snippet:    meta.Snippet,
		Summary:    meta.Summary,
	}
}
