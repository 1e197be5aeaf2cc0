package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/askdoc-labs/askdoc-cli/internal/index/dense"
	"github.com/askdoc-labs/askdoc-cli/internal/index/sparse"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

// DefaultEmbedBatchSize is the number of chunk texts sent per embedding
// request during index construction.
const DefaultEmbedBatchSize = 8

// IndexBuilder turns a loaded chunk sequence into a dense embedding index
// and a sparse BM25 index. Both indexes are derived from the same chunk
// slice, so position i in one always corresponds to position i in the
// other - fusion depends on that alignment.
type IndexBuilder struct {
	embedder  driven.EmbeddingService
	batchSize int
}

// BuilderOption configures an IndexBuilder.
type BuilderOption func(*IndexBuilder)

// WithEmbedBatchSize sets the embedding batch size.
func WithEmbedBatchSize(size int) BuilderOption {
	return func(b *IndexBuilder) {
		if size > 0 {
			b.batchSize = size
		}
	}
}

// NewIndexBuilder creates an index builder using the given embedding service.
func NewIndexBuilder(embedder driven.EmbeddingService, opts ...BuilderOption) *IndexBuilder {
	b := &IndexBuilder{
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the dense and sparse indexes for the chunk sequence.
// Returns domain.ErrEmptyDocument when the sequence is empty; no index is
// built in that case. The two builds run concurrently and are joined
// before the pair is returned, so a partially built pair is never
// observable by callers.
func (b *IndexBuilder) Build(ctx context.Context, chunks []domain.Chunk) (*dense.Index, *sparse.Index, error) {
	if len(chunks) == 0 {
		return nil, nil, domain.ErrEmptyDocument
	}

	logger.Section("Index Construction")
	logger.Debug("Building indexes over %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var (
		wg        sync.WaitGroup
		denseIdx  *dense.Index
		sparseIdx *sparse.Index
		denseErr  error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		denseIdx, denseErr = b.buildDense(ctx, texts)
	}()

	go func() {
		defer wg.Done()
		sparseIdx = buildSparse(texts)
	}()

	wg.Wait()

	if denseErr != nil {
		return nil, nil, fmt.Errorf("build dense index: %w", denseErr)
	}

	logger.Debug("Indexes built: dense=%d vectors (%d dims), sparse=%d documents",
		denseIdx.Len(), denseIdx.Dimensions(), sparseIdx.Len())

	return denseIdx, sparseIdx, nil
}

// buildDense embeds the chunk texts in fixed-size batches and inserts the
// normalised vectors in input order. Batching reduces round trips; it must
// never reorder chunks.
func (b *IndexBuilder) buildDense(ctx context.Context, texts []string) (*dense.Index, error) {
	idx := dense.New(b.embedder.Dimensions())

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors for %d texts", start, end, len(vectors), end-start)
		}

		for i, vec := range vectors {
			if err := idx.Add(vec); err != nil {
				return nil, fmt.Errorf("insert vector %d: %w", start+i, err)
			}
		}
	}

	return idx, nil
}

// buildSparse tokenises every chunk and builds the BM25 statistics.
func buildSparse(texts []string) *sparse.Index {
	corpus := make([][]string, len(texts))
	for i, t := range texts {
		corpus[i] = sparse.Tokenize(t)
	}
	return sparse.New(corpus)
}
