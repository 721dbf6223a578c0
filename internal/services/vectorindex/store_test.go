package vectorindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RainingDaemons/chateai/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(
		filepath.Join(dir, "index.bin"),
		filepath.Join(dir, "meta.jsonl"),
		"hash-v1",
		nil,
	)
}

func sampleChunks() ([]models.Chunk, [][]float32) {
	chunks := []models.Chunk{
		{ID: "a", Source: "/docs/one.md", ChunkID: 0, Text: "alpha", SourceType: models.SourceTypeDoc, DocName: "one.md"},
		{ID: "b", Source: "/docs/one.md", ChunkID: 1, Text: "beta", SourceType: models.SourceTypeDoc, DocName: "one.md"},
		{ID: "c", Source: "/docs/web_abc.md", ChunkID: 0, Text: "gamma", SourceType: models.SourceTypeSite, URL: "https://example.com"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return chunks, vectors
}

func TestStore_EnsureValidCreatesEmptyPair(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.EnsureValid())
	require.NoError(t, s.Load())

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.Dimension())

	hits, err := s.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = os.Stat(s.indexPath)
	assert.NoError(t, err)
	_, err = os.Stat(s.metaPath)
	assert.NoError(t, err)
}

func TestStore_RebuildAndSearch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 3, s.Dimension())
	assert.Equal(t, "hash-v1", s.Model())

	hits, err := s.Search([]float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	meta, ok := s.Meta(hits[0].Position)
	require.True(t, ok)
	assert.Equal(t, "b", meta.ID)
}

func TestStore_SearchKLargerThanCount(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	hits, err := s.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestStore_SearchDimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	_, err := s.Search([]float32{1, 0}, 3)
	assert.Error(t, err)
}

func TestStore_RebuildRejectsLengthMismatch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	err := s.Rebuild(chunks, vectors[:2])
	assert.Error(t, err)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	reopened := NewStore(s.indexPath, s.metaPath, "hash-v1", nil)
	require.NoError(t, reopened.EnsureValid())
	require.NoError(t, reopened.Load())

	assert.Equal(t, 3, reopened.Count())
	meta, ok := reopened.Meta(2)
	require.True(t, ok)
	assert.Equal(t, "c", meta.ID)
	assert.Equal(t, models.SourceTypeSite, meta.SourceType)
	assert.Equal(t, "https://example.com", meta.URL)
}

func TestStore_SelfHealsMissingIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))
	require.NoError(t, os.Remove(s.indexPath))

	reopened := NewStore(s.indexPath, s.metaPath, "hash-v1", nil)
	require.NoError(t, reopened.EnsureValid())
	require.NoError(t, reopened.Load())
	assert.Equal(t, 0, reopened.Count())
}

func TestStore_SelfHealsCorruptIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))
	require.NoError(t, os.WriteFile(s.indexPath, []byte("not an index"), 0644))

	reopened := NewStore(s.indexPath, s.metaPath, "hash-v1", nil)
	require.NoError(t, reopened.EnsureValid())
	require.NoError(t, reopened.Load())
	assert.Equal(t, 0, reopened.Count())
}

func TestStore_SelfHealsTruncatedMetaLog(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	data, err := os.ReadFile(s.metaPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.metaPath, data[:len(data)/2], 0644))

	reopened := NewStore(s.indexPath, s.metaPath, "hash-v1", nil)
	require.NoError(t, reopened.EnsureValid())
	require.NoError(t, reopened.Load())
	assert.Equal(t, 0, reopened.Count())
}

func TestStore_SelfHealsLengthDrift(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	// Drop one metadata record while keeping valid JSONL
	data, err := os.ReadFile(s.metaPath)
	require.NoError(t, err)
	lines := 0
	cut := len(data)
	for i, b := range data {
		if b == '\n' {
			lines++
			if lines == 2 {
				cut = i + 1
				break
			}
		}
	}
	require.NoError(t, os.WriteFile(s.metaPath, data[:cut], 0644))

	reopened := NewStore(s.indexPath, s.metaPath, "hash-v1", nil)
	require.NoError(t, reopened.EnsureValid())
	require.NoError(t, reopened.Load())
	assert.Equal(t, 0, reopened.Count())
}

func TestStore_RebuildToEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))
	require.NoError(t, s.Rebuild(nil, nil))

	assert.Equal(t, 0, s.Count())
	hits, err := s.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_SnapshotSurvivesRebuild(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())
	chunks, vectors := sampleChunks()
	require.NoError(t, s.Rebuild(chunks, vectors))

	snap := s.Snapshot()

	replacement := []models.Chunk{
		{ID: "z", Source: "/docs/other.md", ChunkID: 0, Text: "delta", SourceType: models.SourceTypeDoc, DocName: "other.md"},
	}
	require.NoError(t, s.Rebuild(replacement, [][]float32{{0.5, 0.5}}))

	// The captured snapshot keeps serving the pre-rebuild state
	assert.Equal(t, 3, snap.Count())
	hits, err := snap.Search([]float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	meta, ok := snap.Meta(hits[0].Position)
	require.True(t, ok)
	assert.Equal(t, "alpha", meta.Text)

	// A fresh snapshot sees the rebuilt state
	fresh := s.Snapshot()
	assert.Equal(t, 1, fresh.Count())
	meta, ok = fresh.Meta(0)
	require.True(t, ok)
	assert.Equal(t, "delta", meta.Text)
}

func TestStore_MetaOutOfRange(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureValid())

	_, ok := s.Meta(0)
	assert.False(t, ok)
	_, ok = s.Meta(-1)
	assert.False(t, ok)
}
