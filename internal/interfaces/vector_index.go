package interfaces

import (
	"github.com/RainingDaemons/chateai/internal/models"
)

// IndexHit is one raw similarity-search result: an inner-product score and
// the ordinal position of the matching vector/metadata record.
type IndexHit struct {
	Score    float32
	Position int
}

// IndexSnapshot is one immutable load of the index pair. A query runs start
// to finish against a single snapshot, so a concurrent rebuild can never
// pair a score from one index state with a metadata record from another.
type IndexSnapshot interface {
	// Search returns up to k hits ordered by descending inner product.
	// An empty snapshot returns an empty slice.
	Search(query []float32, k int) ([]IndexHit, error)

	// Meta returns the metadata record at the given ordinal position
	Meta(position int) (models.Chunk, bool)

	// Count returns the number of indexed vectors
	Count() int

	// Dimension returns the vector dimension, 0 for an empty snapshot
	Dimension() int

	// Model returns the embedding model name pinned at rebuild time
	Model() string
}

// VectorIndexStore owns the similarity index and the parallel append-only
// metadata log. The central invariant: the number of vectors in the index
// always equals the number of records in the metadata log, with matching
// order. The store is self-healing - missing or corrupt files recreate as
// empty rather than surfacing errors.
type VectorIndexStore interface {
	// Snapshot returns the current immutable snapshot. Rebuilds replace the
	// snapshot wholesale; they never mutate one that has been handed out.
	Snapshot() IndexSnapshot

	// EnsureValid recreates both artifacts as empty when either is missing
	// or unreadable. A query against a fresh store returns no results,
	// never an error.
	EnsureValid() error

	// Load opens the index and metadata log after EnsureValid. Fails only
	// when recreation itself is impossible (e.g. unwritable directory).
	Load() error

	// Rebuild atomically replaces both artifacts with the given chunks and
	// vectors, in order. Consumers never observe mismatched lengths.
	Rebuild(chunks []models.Chunk, vectors [][]float32) error

	// Search returns up to k hits ordered by descending inner product.
	// An empty store returns an empty slice.
	Search(query []float32, k int) ([]IndexHit, error)

	// Count returns the number of indexed vectors
	Count() int

	// Dimension returns the vector dimension, 0 for an empty store
	Dimension() int

	// Model returns the embedding model name pinned at rebuild time
	Model() string

	// Meta returns the metadata record at the given ordinal position
	Meta(position int) (models.Chunk, bool)
}
