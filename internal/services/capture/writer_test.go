package capture

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/loader"
)

func TestSave_RoundTripsThroughFrontMatterParser(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	path, err := w.Save(CapturedPage{
		URL:     "https://example.com/article",
		Title:   "Example Article",
		Snippet: "a short snippet",
		Summary: "a longer summary of the page",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	meta, body := loader.ParseFrontMatter(string(data))
	assert.Equal(t, models.SourceTypeSite, meta["source_type"])
	assert.Equal(t, "https://example.com/article", meta["url"])
	assert.Equal(t, "Example Article", strings.TrimSpace(meta["title"]))
	assert.Equal(t, "a short snippet", strings.TrimSpace(meta["snippet"]))
	// The timestamp must survive re-ingestion in its written RFC3339 form
	parsed, err := time.Parse(time.RFC3339, meta["captured_at"])
	require.NoError(t, err)
	assert.Equal(t, parsed.UTC().Format(time.RFC3339), meta["captured_at"])
	assert.Equal(t, "a longer summary of the page", strings.TrimSpace(body))
}

func TestSave_FilenameDerivesFromURL(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	first, err := w.Save(CapturedPage{URL: "https://example.com/a", Title: "A"})
	require.NoError(t, err)
	second, err := w.Save(CapturedPage{URL: "https://example.com/b", Title: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, `web_[0-9a-f]{16}\.md$`, first)
}

func TestSave_SkipsExistingFile(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	page := CapturedPage{URL: "https://example.com/a", Title: "Original"}
	path, err := w.Save(page)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	page.Title = "Changed"
	again, err := w.Save(page)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_BodyFallsBackToSnippet(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	path, err := w.Save(CapturedPage{URL: "https://example.com/s", Title: "T", Snippet: "snippet only"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, body := loader.ParseFrontMatter(string(data))
	assert.Equal(t, "snippet only", strings.TrimSpace(body))
}

func TestSave_EmptyContentPlaceholder(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	path, err := w.Save(CapturedPage{URL: "https://example.com/e", Title: "T"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, body := loader.ParseFrontMatter(string(data))
	assert.Equal(t, "(no content available)", strings.TrimSpace(body))
}

func TestSave_RejectsMissingURL(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	_, err := w.Save(CapturedPage{Title: "no url"})
	assert.Error(t, err)
}

func TestSave_SanitizesControlCharacters(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	path, err := w.Save(CapturedPage{
		URL:     "https://example.com/ctl",
		Title:   "Line\r\nBreak\x00s",
		Summary: "body\r\nwith breaks",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x00")
	assert.NotContains(t, string(data), "\r")
}

func TestSaveAll_SkipsFailures(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)

	saved := w.SaveAll([]CapturedPage{
		{URL: "https://example.com/1", Title: "one"},
		{Title: "missing url"},
		{URL: "https://example.com/2", Title: "two"},
	})
	assert.Len(t, saved, 2)
}

func TestTruncateForMeta_LongText(t *testing.T) {
	long := strings.Repeat("palabra ", 100)
	out := truncateForMeta(long)

	assert.LessOrEqual(t, len([]rune(out)), metaTruncateLimit+1)
	assert.True(t, strings.HasSuffix(out, "…"))
}
