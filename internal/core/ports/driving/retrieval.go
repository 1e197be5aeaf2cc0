package driving

import (
	"context"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
)

// RetrievalService answers queries against the currently active document's
// index pair.
type RetrievalService interface {
	// Activate loads the document's chunks and (re)builds the dense and
	// sparse indexes in memory, replacing whatever was previously active.
	// Activation completes fully before any retrieval can observe the new
	// indexes; activating the already-active document is a no-op.
	Activate(ctx context.Context, documentID string) error

	// ActiveDocument returns the id of the currently active document,
	// or empty string when no document is active.
	ActiveDocument() string

	// Retrieve returns up to topK fused candidates for the query,
	// best-first. Returns domain.ErrIndexNotReady when no document has
	// been activated.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.Candidate, error)
}
