package capture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
)

// metaTruncateLimit bounds the front-matter copies of snippet and summary;
// the full text still lands in the body
const metaTruncateLimit = 300

// CapturedPage is one web search result to persist as an ingestable
// markdown document
type CapturedPage struct {
	URL     string
	Title   string
	Snippet string
	Summary string
}

// Writer persists captured web pages as front-mattered markdown files that
// the document loader ingests as source type "site". Filenames derive from
// the URL hash, so re-capturing the same page is a no-op.
type Writer struct {
	dir    string
	logger arbor.ILogger
}

// NewWriter creates a capture writer targeting the given directory
func NewWriter(dir string, logger arbor.ILogger) *Writer {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Writer{dir: dir, logger: logger}
}

// Save writes the page to disk and returns the file path. An existing file
// for the same URL is left untouched.
func (w *Writer) Save(page CapturedPage) (string, error) {
	if page.URL == "" {
		return "", fmt.Errorf("captured page has no URL")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create capture directory: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("web_%s.md", hashURL(page.URL)))
	if _, err := os.Stat(path); err == nil {
		w.logger.Debug().Str("url", page.URL).Str("path", path).Msg("Captured page already on disk, skipping")
		return path, nil
	}

	if err := os.WriteFile(path, []byte(render(page)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write captured page: %w", err)
	}

	w.logger.Info().Str("url", page.URL).Str("path", path).Msg("Captured page saved")
	return path, nil
}

// SaveAll persists a batch of pages, skipping individual failures
func (w *Writer) SaveAll(pages []CapturedPage) []string {
	saved := make([]string, 0, len(pages))
	for _, page := range pages {
		path, err := w.Save(page)
		if err != nil {
			w.logger.Warn().Err(err).Str("url", page.URL).Msg("Failed to save captured page, skipping")
			continue
		}
		saved = append(saved, path)
	}
	return saved
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

// render produces the front-mattered markdown document: a `---` delimited
// block with source_type/url/title (always) plus snippet/summary/captured_at,
// followed by the best available body text
func render(page CapturedPage) string {
	title := sanitize(page.Title)
	snippet := sanitize(page.Snippet)
	summary := sanitize(page.Summary)

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source_type: site\n")
	b.WriteString("url: " + page.URL + "\n")
	b.WriteString("title: |\n")
	b.WriteString(indentBlock(title) + "\n")
	if s := truncateForMeta(snippet); s != "" {
		b.WriteString("snippet: |\n")
		b.WriteString(indentBlock(s) + "\n")
	}
	if s := truncateForMeta(summary); s != "" {
		b.WriteString("summary: |\n")
		b.WriteString(indentBlock(s) + "\n")
	}
	b.WriteString("captured_at: " + time.Now().UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n")

	body := strings.TrimSpace(summary)
	if body == "" {
		body = strings.TrimSpace(snippet)
	}
	if body == "" {
		body = "(no content available)"
	}
	b.WriteString(body + "\n")

	return b.String()
}

// sanitize strips NUL bytes and normalizes line endings
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func truncateForMeta(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= metaTruncateLimit {
		return s
	}
	return strings.TrimRight(string(runes[:metaTruncateLimit]), " \n") + "…"
}
