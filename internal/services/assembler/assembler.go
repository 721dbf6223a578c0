package assembler

import (
	"fmt"
	"strings"

	"github.com/RainingDaemons/chateai/internal/models"
)

// divider separates citation blocks and sections in the assembled context
const divider = "\n\n---\n\n"

// BuildContext renders retrieval hits into the citable context string handed
// to prompt construction. Hits are grouped by provenance into a DOCS section
// and a WEB section, in that order, each emitted only when it has content.
// Every block is a one-line citation tag followed by the chunk text. Returns
// an empty string when no hit contributed text.
func BuildContext(hits []models.RetrievalHit) string {
	var docBlocks, webBlocks []string

	for _, hit := range hits {
		text := strings.TrimSpace(hit.Text)
		if text == "" {
			continue
		}

		if hit.SourceType == models.SourceTypeSite {
			ref := hit.URL
			if ref == "" {
				ref = hit.Source
			}
			tag := fmt.Sprintf("[site:%s|chunk:%d|score:%.3f]", ref, hit.ChunkID, hit.Score)
			webBlocks = append(webBlocks, tag+"\n"+text)
		} else {
			tag := fmt.Sprintf("[doc:%s|chunk:%d|score:%.3f]", hit.DocName, hit.ChunkID, hit.Score)
			docBlocks = append(docBlocks, tag+"\n"+text)
		}
	}

	var sections []string
	if len(docBlocks) > 0 {
		sections = append(sections, "DOCS\n"+strings.Join(docBlocks, divider))
	}
	if len(webBlocks) > 0 {
		sections = append(sections, "WEB\n"+strings.Join(webBlocks, divider))
	}

	return strings.Join(sections, divider)
}
