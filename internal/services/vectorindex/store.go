package vectorindex

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// Store keeps the flat vector index and the parallel JSONL metadata log on
// disk and serves inner-product search from an in-memory copy. Both files
// are rewritten together through temp-file renames, so readers never see a
// half-written pair. Missing or corrupt files are recreated empty instead
// of failing the caller.
//
// The in-memory copy is an immutable Snapshot behind a pointer. Load and
// Rebuild construct a fresh Snapshot off to the side and swap the pointer;
// a snapshot handed out before the swap keeps serving its own vectors and
// metadata, so scores and records never mix across index states.
type Store struct {
	indexPath string
	metaPath  string
	model     string

	logger arbor.ILogger

	mu   sync.RWMutex
	snap *Snapshot
}

var _ interfaces.VectorIndexStore = (*Store)(nil)

// Snapshot is one immutable load of the index pair. All fields are fixed at
// construction; queries need no locking.
type Snapshot struct {
	dim     int
	model   string // model name from the index header
	vectors [][]float32
	meta    []models.Chunk
}

var _ interfaces.IndexSnapshot = (*Snapshot)(nil)

// NewStore creates a store over the given index and metadata paths. The
// model name is pinned into the index header on every rebuild.
func NewStore(indexPath, metaPath, model string, logger arbor.ILogger) *Store {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Store{
		indexPath: indexPath,
		metaPath:  metaPath,
		model:     model,
		logger:    logger,
		snap:      &Snapshot{},
	}
}

// EnsureValid checks that both artifacts exist and decode; anything missing
// or unreadable resets the pair to a valid empty state
func (s *Store) EnsureValid() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexData, indexErr := os.ReadFile(s.indexPath)
	metaData, metaErr := os.ReadFile(s.metaPath)

	healthy := indexErr == nil && metaErr == nil
	var idx *indexFile
	var meta []models.Chunk

	if healthy {
		var err error
		idx, err = decodeIndex(indexData)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", s.indexPath).Msg("Index file unreadable, resetting store")
			healthy = false
		}
	}
	if healthy {
		var err error
		meta, err = decodeMeta(metaData)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", s.metaPath).Msg("Metadata log unreadable, resetting store")
			healthy = false
		}
	}
	if healthy && len(idx.Vectors) != len(meta) {
		s.logger.Warn().
			Int("vectors", len(idx.Vectors)).
			Int("meta_records", len(meta)).
			Msg("Index and metadata log lengths differ, resetting store")
		healthy = false
	}

	if healthy {
		return nil
	}

	if indexErr != nil && !os.IsNotExist(indexErr) {
		s.logger.Warn().Err(indexErr).Str("path", s.indexPath).Msg("Index file unreadable, resetting store")
	}
	if metaErr != nil && !os.IsNotExist(metaErr) {
		s.logger.Warn().Err(metaErr).Str("path", s.metaPath).Msg("Metadata log unreadable, resetting store")
	}

	return s.writeLocked(nil, nil)
}

// Load reads both artifacts into memory. Call after EnsureValid.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexData, err := os.ReadFile(s.indexPath)
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	idx, err := decodeIndex(indexData)
	if err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	metaData, err := os.ReadFile(s.metaPath)
	if err != nil {
		return fmt.Errorf("failed to read metadata log: %w", err)
	}
	meta, err := decodeMeta(metaData)
	if err != nil {
		return fmt.Errorf("failed to decode metadata log: %w", err)
	}

	if len(idx.Vectors) != len(meta) {
		return fmt.Errorf("index has %d vectors but metadata log has %d records", len(idx.Vectors), len(meta))
	}

	s.snap = &Snapshot{
		dim:     idx.Dim,
		model:   idx.Model,
		vectors: idx.Vectors,
		meta:    meta,
	}

	s.logger.Info().
		Int("vectors", len(meta)).
		Int("dimension", idx.Dim).
		Str("model", idx.Model).
		Msg("Vector index loaded")
	return nil
}

// Rebuild replaces both artifacts with the given chunks and vectors. The
// in-memory copy updates only after both files rename into place.
func (s *Store) Rebuild(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(chunks, vectors)
}

// Snapshot returns the current immutable snapshot. Callers that pair a
// search with metadata lookups must run both against the same snapshot.
func (s *Store) Snapshot() interfaces.IndexSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Search runs against the current snapshot
func (s *Store) Search(query []float32, k int) ([]interfaces.IndexHit, error) {
	return s.Snapshot().Search(query, k)
}

// Count returns the number of indexed vectors
func (s *Store) Count() int {
	return s.Snapshot().Count()
}

// Dimension returns the vector dimension, 0 for an empty store
func (s *Store) Dimension() int {
	return s.Snapshot().Dimension()
}

// Model returns the embedding model name from the index header
func (s *Store) Model() string {
	return s.Snapshot().Model()
}

// Meta returns the metadata record at the given ordinal position
func (s *Store) Meta(position int) (models.Chunk, bool) {
	return s.Snapshot().Meta(position)
}

// Search scores the query against every vector and returns up to k hits by
// descending inner product. Stored vectors are unit-normalized, so the
// inner product is the cosine similarity.
func (sn *Snapshot) Search(query []float32, k int) ([]interfaces.IndexHit, error) {
	if len(sn.vectors) == 0 {
		return []interfaces.IndexHit{}, nil
	}
	if len(query) != sn.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), sn.dim)
	}

	hits := make([]interfaces.IndexHit, len(sn.vectors))
	for i, vec := range sn.vectors {
		var score float32
		for j := range vec {
			score += query[j] * vec[j]
		}
		hits[i] = interfaces.IndexHit{Score: score, Position: i}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k <= 0 {
		return []interfaces.IndexHit{}, nil
	}
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Count returns the number of indexed vectors
func (sn *Snapshot) Count() int { return len(sn.vectors) }

// Dimension returns the vector dimension, 0 for an empty snapshot
func (sn *Snapshot) Dimension() int { return sn.dim }

// Model returns the embedding model name from the index header
func (sn *Snapshot) Model() string { return sn.model }

// Meta returns the metadata record at the given ordinal position
func (sn *Snapshot) Meta(position int) (models.Chunk, bool) {
	if position < 0 || position >= len(sn.meta) {
		return models.Chunk{}, false
	}
	return sn.meta[position], true
}

// writeLocked serializes both artifacts to temp files, renames them into
// place, and swaps in a fresh snapshot. Caller must hold the write lock.
// The snapshot copies the input slices so later caller mutations cannot
// reach a snapshot already handed out.
func (s *Store) writeLocked(chunks []models.Chunk, vectors [][]float32) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	indexData, err := encodeIndex(&indexFile{Model: s.model, Dim: dim, Vectors: vectors})
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	metaData, err := encodeMeta(chunks)
	if err != nil {
		return fmt.Errorf("failed to encode metadata log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.metaPath), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	if err := writeAtomic(s.indexPath, indexData); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := writeAtomic(s.metaPath, metaData); err != nil {
		return fmt.Errorf("failed to write metadata log: %w", err)
	}

	vecs := make([][]float32, len(vectors))
	copy(vecs, vectors)
	recs := make([]models.Chunk, len(chunks))
	copy(recs, chunks)
	s.snap = &Snapshot{
		dim:     dim,
		model:   s.model,
		vectors: vecs,
		meta:    recs,
	}

	s.logger.Info().
		Int("vectors", len(vectors)).
		Int("dimension", dim).
		Str("model", s.model).
		Msg("Vector index rebuilt")
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// encodeMeta renders one JSON record per line, in index order
func encodeMeta(chunks []models.Chunk) ([]byte, error) {
	var out []byte
	for i := range chunks {
		line, err := json.Marshal(chunks[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}

func decodeMeta(data []byte) ([]models.Chunk, error) {
	meta := make([]models.Chunk, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk models.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("invalid record at line %d: %w", lineNo, err)
		}
		meta = append(meta, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return meta, nil
}
