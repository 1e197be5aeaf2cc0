package driven

import (
	"context"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
)

// ChunkStore provides durable keyed storage of a document's ordered text
// chunks. It is the only persistent artifact in the system; the in-memory
// indexes are always rebuilt from it.
//
// Implementations must allow concurrent access across different document
// ids, and must make same-id writes mutually exclusive with same-id reads
// so a half-replaced chunk set is never observable.
type ChunkStore interface {
	// ChunksExist reports whether at least one chunk exists for the
	// document id. Used to short-circuit re-extraction on cache hits.
	ChunksExist(ctx context.Context, documentID string) (bool, error)

	// ReplaceChunks atomically deletes all prior chunks for the id and
	// inserts the given texts, preserving input order via the ordinal
	// field. Returns the number of chunks inserted.
	ReplaceChunks(ctx context.Context, documentID string, texts []string) (int, error)

	// LoadChunks returns the document's chunks in ordinal order.
	// Returns domain.ErrNotFound if no chunks exist.
	LoadChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}
