package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RainingDaemons/chateai/internal/models"
)

func TestBuildContext_DocsAndWebSections(t *testing.T) {
	hits := []models.RetrievalHit{
		{
			Score:      0.812,
			Source:     "/a/b.md",
			ChunkID:    2,
			Text:       "hello",
			SourceType: models.SourceTypeDoc,
			DocName:    "b.md",
		},
		{
			Score:      0.5,
			Source:     "/web/web_x.md",
			ChunkID:    0,
			Text:       "world",
			SourceType: models.SourceTypeSite,
			URL:        "http://x",
		},
	}

	out := BuildContext(hits)

	assert.Contains(t, out, "[doc:b.md|chunk:2|score:0.812]\nhello")
	assert.Contains(t, out, "[site:http://x|chunk:0|score:0.500]\nworld")
	assert.Less(t, strings.Index(out, "DOCS"), strings.Index(out, "WEB"))
	assert.True(t, strings.HasPrefix(out, "DOCS\n"))
	assert.Contains(t, out, "\n\n---\n\n")
}

func TestBuildContext_DocsOnly(t *testing.T) {
	hits := []models.RetrievalHit{
		{Score: 0.9, ChunkID: 0, Text: "only doc", SourceType: models.SourceTypeDoc, DocName: "a.txt"},
	}

	out := BuildContext(hits)

	assert.Equal(t, "DOCS\n[doc:a.txt|chunk:0|score:0.900]\nonly doc", out)
	assert.NotContains(t, out, "WEB")
}

func TestBuildContext_WebOnly(t *testing.T) {
	hits := []models.RetrievalHit{
		{Score: 0.25, ChunkID: 3, Text: "page text", SourceType: models.SourceTypeSite, URL: "https://example.com"},
	}

	out := BuildContext(hits)

	assert.Equal(t, "WEB\n[site:https://example.com|chunk:3|score:0.250]\npage text", out)
	assert.NotContains(t, out, "DOCS")
}

func TestBuildContext_SiteURLFallsBackToSource(t *testing.T) {
	hits := []models.RetrievalHit{
		{Score: 0.4, Source: "/web/web_abc.md", ChunkID: 1, Text: "body", SourceType: models.SourceTypeSite},
	}

	out := BuildContext(hits)
	assert.Contains(t, out, "[site:/web/web_abc.md|chunk:1|score:0.400]")
}

func TestBuildContext_SkipsEmptyText(t *testing.T) {
	hits := []models.RetrievalHit{
		{Score: 0.9, ChunkID: 0, Text: "   \n\t ", SourceType: models.SourceTypeDoc, DocName: "blank.md"},
		{Score: 0.8, ChunkID: 1, Text: "kept", SourceType: models.SourceTypeDoc, DocName: "kept.md"},
	}

	out := BuildContext(hits)
	assert.NotContains(t, out, "blank.md")
	assert.Contains(t, out, "kept")
}

func TestBuildContext_AllEmpty(t *testing.T) {
	assert.Empty(t, BuildContext(nil))
	assert.Empty(t, BuildContext([]models.RetrievalHit{
		{Score: 0.9, ChunkID: 0, Text: "  ", SourceType: models.SourceTypeDoc, DocName: "a.md"},
	}))
}

func TestBuildContext_MultipleBlocksWithinSection(t *testing.T) {
	hits := []models.RetrievalHit{
		{Score: 0.9, ChunkID: 0, Text: "first", SourceType: models.SourceTypeDoc, DocName: "a.md"},
		{Score: 0.7, ChunkID: 1, Text: "second", SourceType: models.SourceTypeDoc, DocName: "a.md"},
	}

	out := BuildContext(hits)
	assert.Equal(t, "DOCS\n[doc:a.md|chunk:0|score:0.900]\nfirst\n\n---\n\n[doc:a.md|chunk:1|score:0.700]\nsecond", out)
}
