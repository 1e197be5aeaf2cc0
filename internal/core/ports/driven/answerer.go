package driven

import "context"

// Answerer synthesises a final answer from a question and its reranked
// context snippets. Calls are network-bound and may fail or time out;
// the orchestrator converts any failure into a fixed fallback answer.
type Answerer interface {
	// Answer generates an answer to the query grounded in the snippets.
	Answer(ctx context.Context, query string, snippets []string) (string, error)

	// ModelName returns the generation model identifier for logging.
	ModelName() string
}
