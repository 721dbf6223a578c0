package indexer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/chunker"
	"github.com/RainingDaemons/chateai/internal/services/embedding"
	"github.com/RainingDaemons/chateai/internal/services/vectorindex"
)

type staticLoader struct {
	docs []models.Document
}

func (l *staticLoader) LoadDocuments(_ context.Context, _ []string) []models.Document {
	return l.docs
}

func newTestStore(t *testing.T) *vectorindex.Store {
	t.Helper()
	dir := t.TempDir()
	store := vectorindex.NewStore(
		filepath.Join(dir, "index.bin"),
		filepath.Join(dir, "meta.jsonl"),
		"hash-v1",
		nil,
	)
	require.NoError(t, store.EnsureValid())
	require.NoError(t, store.Load())
	return store
}

func TestRun_IndexesDocuments(t *testing.T) {
	loader := &staticLoader{docs: []models.Document{
		{
			Path:       "/docs/notes.md",
			Text:       strings.Repeat("real madrid won the champions league final ", 40),
			SourceType: models.SourceTypeDoc,
			DocName:    "notes.md",
		},
		{
			Path:       "/docs/web_1234.md",
			Text:       "captured page body",
			SourceType: models.SourceTypeSite,
			DocName:    "Example Title",
			URL:        "https://example.com/page",
			CapturedAt: "2026-08-28T10:00:00Z",
		},
	}}
	store := newTestStore(t)
	svc := NewService(loader, chunker.New(), embedding.NewLocalEmbedder("hash-v1", 64), store, nil)

	stats, err := svc.Run(context.Background(), []string{"/docs"})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Greater(t, stats.Chunks, 1)
	assert.Equal(t, stats.Chunks, store.Count())
	assert.Equal(t, 64, store.Dimension())

	// Chunk ids restart at zero per document and provenance is inherited
	last, ok := store.Meta(store.Count() - 1)
	require.True(t, ok)
	assert.Equal(t, 0, last.ChunkID)
	assert.Equal(t, models.SourceTypeSite, last.SourceType)
	assert.Equal(t, "https://example.com/page", last.URL)
	assert.Equal(t, "2026-08-28T10:00:00Z", last.CapturedAt)
	assert.NotEmpty(t, last.ID)

	first, ok := store.Meta(0)
	require.True(t, ok)
	assert.Equal(t, 0, first.ChunkID)
	assert.Equal(t, "/docs/notes.md", first.Source)
	second, ok := store.Meta(1)
	require.True(t, ok)
	assert.Equal(t, 1, second.ChunkID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRun_EmptyCorpusResetsStore(t *testing.T) {
	store := newTestStore(t)

	// Seed with existing content, then run against nothing
	seed := &staticLoader{docs: []models.Document{
		{Path: "/docs/a.txt", Text: "seed text", SourceType: models.SourceTypeDoc, DocName: "a.txt"},
	}}
	svc := NewService(seed, chunker.New(), embedding.NewLocalEmbedder("hash-v1", 32), store, nil)
	_, err := svc.Run(context.Background(), []string{"/docs"})
	require.NoError(t, err)
	require.Equal(t, 1, store.Count())

	empty := NewService(&staticLoader{}, chunker.New(), embedding.NewLocalEmbedder("hash-v1", 32), store, nil)
	stats, err := empty.Run(context.Background(), []string{"/docs"})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Chunks)
	assert.Equal(t, 0, store.Count())
}

func TestRun_EmptyTextDocumentYieldsNoChunks(t *testing.T) {
	loader := &staticLoader{docs: []models.Document{
		{Path: "/docs/scanned.pdf", Text: "", SourceType: models.SourceTypeDoc, DocName: "scanned.pdf"},
	}}
	store := newTestStore(t)
	svc := NewService(loader, chunker.New(), embedding.NewLocalEmbedder("hash-v1", 32), store, nil)

	stats, err := svc.Run(context.Background(), []string{"/docs"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 0, stats.Chunks)
}

func TestRun_CanceledContext(t *testing.T) {
	loader := &staticLoader{docs: []models.Document{
		{Path: "/docs/a.txt", Text: "some text", SourceType: models.SourceTypeDoc, DocName: "a.txt"},
	}}
	store := newTestStore(t)
	svc := NewService(loader, chunker.New(), embedding.NewLocalEmbedder("hash-v1", 32), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, []string{"/docs"})
	assert.Error(t, err)
}
