// Package passthrough provides a reranker that keeps the fused retrieval
// order, used when no cross-encoder service is configured.
package passthrough

import (
	"context"

	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker truncates the candidate list without re-scoring it. Fused
// candidates arrive ordered by retrieval score, so the first topK are
// already the best guesses.
type Reranker struct{}

// New creates a passthrough reranker.
func New() *Reranker {
	return &Reranker{}
}

// Rerank returns the first topK candidates unchanged.
func (r *Reranker) Rerank(_ context.Context, _ string, candidates []string, topK int) ([]string, error) {
	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// ModelName identifies the passthrough strategy.
func (r *Reranker) ModelName() string {
	return "passthrough"
}
