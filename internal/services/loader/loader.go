// Package loader ingests heterogeneous documents: it walks configured
// directory roots, classifies files by extension and extracts raw text plus
// per-document provenance metadata. Loading is best-effort end to end - a
// file that cannot be read or parsed is skipped, and empty extracted text is
// a valid outcome that downstream stages must tolerate.
package loader

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// Service implements interfaces.DocumentLoader
type Service struct {
	extensions map[string]bool
	pdf        *PDFExtractor
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*Service)(nil)

// NewService creates a document loader. Extensions default to
// .txt/.md/.pdf when none are configured.
func NewService(extensions []string, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".pdf"}
	}
	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}

	return &Service{
		extensions: extMap,
		pdf:        NewPDFExtractor(logger),
		logger:     logger,
	}
}

// LoadDocuments recursively enumerates regular files under the given roots
// and returns one Document per ingestable file, in walk order. Files with
// unknown extensions and files that fail to read are skipped; the batch is
// never aborted.
func (s *Service) LoadDocuments(ctx context.Context, roots []string) []models.Document {
	var docs []models.Document

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			ext := strings.ToLower(filepath.Ext(path))
			if !s.extensions[ext] {
				return nil
			}

			doc, err := s.loadFile(path, ext)
			if err != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unloadable file")
				return nil
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("root", root).Msg("Document walk interrupted")
		}
	}

	s.logger.Info().Int("documents", len(docs)).Int("roots", len(roots)).Msg("Documents loaded")
	return docs
}

// loadFile dispatches on extension and normalizes into a Document
func (s *Service) loadFile(path, ext string) (models.Document, error) {
	switch ext {
	case ".txt":
		text, err := readTextFile(path)
		if err != nil {
			return models.Document{}, err
		}
		return models.Document{
			Path:       path,
			Text:       text,
			SourceType: models.SourceTypeDoc,
			DocName:    filepath.Base(path),
		}, nil

	case ".md":
		raw, err := readTextFile(path)
		if err != nil {
			return models.Document{}, err
		}
		return s.buildMarkdownDocument(path, raw), nil

	case ".pdf":
		// Extraction failure yields empty text, never aborts the load.
		text, err := s.pdf.ExtractText(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("PDF extraction failed, indexing empty text")
			text = ""
		}
		return models.Document{
			Path:       path,
			Text:       text,
			SourceType: models.SourceTypeDoc,
			DocName:    filepath.Base(path),
		}, nil
	}

	return models.Document{}, fs.ErrInvalid
}

// buildMarkdownDocument parses optional front matter and applies the
// source-type and display-name defaulting rules: a url key without an
// explicit source_type infers a captured page; display names fall back to
// the parsed title and finally to the file's base name.
func (s *Service) buildMarkdownDocument(path, raw string) models.Document {
	meta, body := ParseFrontMatter(raw)

	sourceType := meta["source_type"]
	if sourceType == "" {
		if meta["url"] != "" {
			sourceType = models.SourceTypeSite
		} else {
			sourceType = models.SourceTypeDoc
		}
	}

	doc := models.Document{
		Path:       path,
		Text:       body,
		SourceType: sourceType,
		DocName:    meta["doc_name"],
	}

	if sourceType == models.SourceTypeSite {
		doc.URL = meta["url"]
		doc.CapturedAt = meta["captured_at"]
		doc.Title = meta["title"]
		doc.Snippet = meta["snippet"]
		doc.Summary = meta["summary"]
		doc.SiteDomain = siteDomain(meta["url"])
		if doc.DocName == "" {
			doc.DocName = meta["title"]
		}
	}
	if doc.DocName == "" {
		doc.DocName = filepath.Base(path)
	}

	return doc
}

// readTextFile reads a file as UTF-8, replacing invalid byte sequences
// rather than failing
func readTextFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// siteDomain extracts the host from a captured page URL, empty on failure
func siteDomain(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
