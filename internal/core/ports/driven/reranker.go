package driven

import "context"

// Reranker narrows fused retrieval candidates to a final top-k using a
// cross-encoder relevance model. Scoring every (query, candidate) pair is
// CPU-heavy, so callers offload Rerank to a bounded worker pool rather
// than running it inline with other question pipelines.
type Reranker interface {
	// Rerank scores the candidate texts against the query and returns
	// up to topK texts ordered by descending relevance.
	Rerank(ctx context.Context, query string, candidates []string, topK int) ([]string, error)

	// ModelName returns the cross-encoder model identifier for logging.
	ModelName() string
}
