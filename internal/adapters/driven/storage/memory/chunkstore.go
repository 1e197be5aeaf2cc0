// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and for ephemeral sessions where chunk
// persistence across runs is not needed.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
	nextID int64
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

// ChunksExist reports whether any chunks are cached for the document.
func (s *ChunkStore) ChunksExist(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]) > 0, nil
}

// ReplaceChunks replaces the chunk sequence for a document.
func (s *ChunkStore) ReplaceChunks(_ context.Context, documentID string, texts []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		s.nextID++
		chunks[i] = domain.Chunk{
			ID:         s.nextID,
			DocumentID: documentID,
			Text:       text,
			Ordinal:    i,
		}
	}
	s.chunks[documentID] = chunks
	return len(chunks), nil
}

// LoadChunks returns the document's chunks in stored order.
// Returns domain.ErrNotFound when the document has no chunks.
func (s *ChunkStore) LoadChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.chunks[documentID]
	if !ok || len(chunks) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}
