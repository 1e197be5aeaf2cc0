package driving

import "context"

// QAService coordinates document ingestion, activation and concurrent
// multi-question answering.
type QAService interface {
	// EnsureDocument makes sure chunks exist for the source behind ref,
	// fetching, extracting and chunking only on a cache miss. Returns
	// the document id derived from ref.
	EnsureDocument(ctx context.Context, ref string) (string, error)

	// Activate builds the in-memory index pair for the document.
	Activate(ctx context.Context, documentID string) error

	// AnswerAll runs the retrieve-rerank-answer pipeline for every
	// question concurrently against the active document and returns one
	// answer per question, positionally aligned with the input
	// regardless of completion order. Per-question failures are
	// contained and produce a fixed fallback answer.
	AnswerAll(ctx context.Context, questions []string) []string
}
