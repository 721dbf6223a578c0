package interfaces

import (
	"context"

	"github.com/RainingDaemons/chateai/internal/models"
)

// DocumentLoader walks document roots and extracts raw text plus
// per-document metadata. Loading is best-effort: unreadable or unsupported
// files are skipped and never abort the batch.
type DocumentLoader interface {
	// LoadDocuments enumerates regular files under the given roots and
	// returns one Document per ingestable file, in walk order.
	LoadDocuments(ctx context.Context, roots []string) []models.Document
}
