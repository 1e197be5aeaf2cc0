package driven

import (
	"context"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
)

// SourceFetcher retrieves a raw document from its origin (URL or file
// path). Fetching only happens on cache misses; an already-ingested
// document is never fetched again.
type SourceFetcher interface {
	// Fetch downloads or reads the source behind ref.
	Fetch(ctx context.Context, ref string) (*domain.RawSource, error)
}
