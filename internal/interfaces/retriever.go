package interfaces

import (
	"context"

	"github.com/RainingDaemons/chateai/internal/models"
)

// Retriever answers similarity queries against a loaded index snapshot.
// Instances are immutable once constructed; the rag manager swaps whole
// instances after a rebuild so in-flight queries always see a consistent
// (possibly stale) snapshot.
type Retriever interface {
	// Retrieve embeds the query, searches top-k, and maps hits back to
	// enriched metadata in descending-similarity order. An empty index
	// returns an empty slice without an embedding call.
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievalHit, error)
}
