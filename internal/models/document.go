package models

// Source kinds for ingested content
const (
	// SourceTypeDoc marks content loaded from a local document
	SourceTypeDoc = "doc"
	// SourceTypeSite marks content captured from a web page
	SourceTypeSite = "site"
)

// Document represents one source file or captured page, produced by the
// loader and consumed by the chunker. Documents are not persisted; only
// their chunks are.
type Document struct {
	// Path is the absolute path of the source file
	Path string `json:"path"`

	// Text is the extracted raw text. Empty text is valid (e.g. a scanned
	// PDF whose extraction produced nothing) and must not fail downstream.
	Text string `json:"text"`

	// SourceType is "doc" or "site"
	SourceType string `json:"source_type"`

	// DocName is the display name used in citations
	DocName string `json:"doc_name"`

	// Provenance fields, present for captured pages only
	URL        string `json:"url,omitempty"`
	CapturedAt string `json:"captured_at,omitempty"`
	SiteDomain string `json:"site_domain,omitempty"`
	Title      string `json:"title,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Summary    string `json:"summary,omitempty"`
}
