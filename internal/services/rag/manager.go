package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/indexer"
	"github.com/RainingDaemons/chateai/internal/services/retriever"
)

// Manager owns the active retriever handle and serializes index rebuilds.
// Retrieval takes the read side of the lock and uses whatever snapshot is
// current; a reindex holds the write side for its full duration (load,
// chunk, embed, rebuild) and swaps in a fresh retriever before releasing.
// In-flight queries against the previous handle complete against a
// consistent, possibly stale, snapshot and are never blocked by the writer.
type Manager struct {
	indexer  *indexer.Service
	store    interfaces.VectorIndexStore
	embedder interfaces.EmbeddingService
	roots    []string
	topK     int
	logger   arbor.ILogger

	mu      sync.RWMutex
	current interfaces.Retriever
}

// NewManager builds the manager and its initial retriever over whatever
// index currently exists on disk (possibly a fresh empty one).
func NewManager(idx *indexer.Service, store interfaces.VectorIndexStore, embedder interfaces.EmbeddingService, roots []string, topK int, logger arbor.ILogger) (*Manager, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	initial, err := retriever.NewService(store, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct initial retriever: %w", err)
	}

	return &Manager{
		indexer:  idx,
		store:    store,
		embedder: embedder,
		roots:    roots,
		topK:     topK,
		logger:   logger,
		current:  initial,
	}, nil
}

// Retriever returns the current retriever handle
func (m *Manager) Retriever() interfaces.Retriever {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Retrieve runs a query against the current snapshot. topK <= 0 uses the
// configured default.
func (m *Manager) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievalHit, error) {
	if topK <= 0 {
		topK = m.topK
	}
	return m.Retriever().Retrieve(ctx, query, topK)
}

// ReindexSync rebuilds the index from the configured roots and swaps in a
// fresh retriever. Blocks until the new snapshot is live.
func (m *Manager) ReindexSync(ctx context.Context) (*indexer.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, err := m.indexer.Run(ctx, m.roots)
	if err != nil {
		return nil, err
	}

	fresh, err := retriever.NewService(m.store, m.embedder, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct retriever after reindex: %w", err)
	}
	m.current = fresh

	return stats, nil
}

// ReindexAsync starts a background rebuild and returns immediately.
// Failures are logged, not reported back; callers that need fresh data must
// query again later.
func (m *Manager) ReindexAsync(ctx context.Context) {
	common.SafeGo(m.logger, "reindex", func() {
		if _, err := m.ReindexSync(ctx); err != nil {
			m.logger.Error().Err(err).Msg("Background reindex failed")
		}
	})
}

// Count reports the number of indexed vectors in the current store
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Count()
}

// Model reports the embedding model pinned in the current index
func (m *Manager) Model() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Model()
}
