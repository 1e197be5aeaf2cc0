// Package cache wraps an embedding service with an in-memory LRU cache.
// Chunk texts repeat across activations of the same document and across
// similar queries, so caching avoids re-embedding identical text.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingService = (*EmbeddingCache)(nil)

// DefaultCacheSize is the number of embeddings kept in memory.
const DefaultCacheSize = 4096

// EmbeddingCache decorates an embedding service with an LRU cache keyed
// by the exact input text.
type EmbeddingCache struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New creates a caching wrapper around the given embedding service.
// A size of zero or less uses DefaultCacheSize.
func New(inner driven.EmbeddingService, size int) (*EmbeddingCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &EmbeddingCache{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, delegating on a miss.
func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

// EmbedBatch serves cached entries and delegates only the misses, then
// reassembles results in input order.
func (c *EmbeddingCache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIndexes []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIndexes = append(missIndexes, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, vec := range vecs {
		c.cache.Add(missTexts[j], vec)
		out[missIndexes[j]] = vec
	}
	return out, nil
}

// Dimensions returns the inner service's embedding vector size.
func (c *EmbeddingCache) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (c *EmbeddingCache) ModelName() string {
	return c.inner.ModelName()
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	return c.cache.Len()
}
