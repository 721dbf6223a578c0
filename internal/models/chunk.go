package models

// Chunk is one bounded, overlapping slice of a document's text - the unit of
// embedding and retrieval. One chunk maps to exactly one metadata log record
// and one vector at the same ordinal position in the index; the two sequences
// must always have equal length and matching order.
type Chunk struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"` // zero-based position within its source
	Text    string `json:"text"`

	SourceType string `json:"source_type"`
	DocName    string `json:"doc_name"`

	// Optional provenance inherited from the source document
	URL        string `json:"url,omitempty"`
	CapturedAt string `json:"captured_at,omitempty"`
	SiteDomain string `json:"site_domain,omitempty"`
	Title      string `json:"title,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// RetrievalHit is one similarity-search result enriched with the chunk's
// metadata record. Ephemeral: produced per query, never persisted.
type RetrievalHit struct {
	Score   float32 `json:"score"`
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`

	SourceType string `json:"source_type"`
	DocName    string `json:"doc_name"`

	URL        string `json:"url,omitempty"`
	CapturedAt string `json:"captured_at,omitempty"`
	SiteDomain string `json:"site_domain,omitempty"`
	Title      string `json:"title,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Summary    string `json:"summary,omitempty"`
}
