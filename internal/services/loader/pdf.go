// -----------------------------------------------------------------------
// PDF text extraction - best-effort, pdfcpu-backed
// -----------------------------------------------------------------------

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// PDFExtractor extracts text content from PDF documents using pdfcpu.
// Extraction is best-effort: a page with no recoverable text contributes an
// empty string, and a wholly unextractable document yields empty text.
type PDFExtractor struct {
	logger  arbor.ILogger
	tempDir string
}

// NewPDFExtractor creates a PDF extractor with a scratch directory for
// pdfcpu's per-page content dumps
func NewPDFExtractor(logger arbor.ILogger) *PDFExtractor {
	tempDir := filepath.Join(os.TempDir(), "chateai-pdf")
	os.MkdirAll(tempDir, 0755)

	return &PDFExtractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractText returns the document's text, pages joined by newlines.
// Any per-page failure contributes an empty page rather than an error.
func (e *PDFExtractor) ExtractText(path string) (string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return "", nil
	}

	outDir := filepath.Join(e.tempDir, fmt.Sprintf("pages_%d_%s", os.Getpid(), filepath.Base(path)))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("PDF content extraction failed, returning empty text")
		return "", nil
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	parts := make([]string, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		parts = append(parts, pageTexts[pageNum])
	}

	return strings.Join(parts, "\n"), nil
}
