package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/askdoc-labs/askdoc-cli/internal/index/dense"
	"github.com/askdoc-labs/askdoc-cli/internal/index/sparse"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// rrfK is the reciprocal rank fusion constant. It dampens the advantage
// of top ranks so both rankings contribute meaningfully.
const rrfK = 60.0

// DefaultRetrieveTopK is the candidate count per ranking when the caller
// passes a non-positive top-k.
const DefaultRetrieveTopK = 25

// DefaultQueryPrefix is the instruction prepended to queries before dense
// embedding, per the bge/e5 retrieval convention. Passage texts are
// embedded without it.
const DefaultQueryPrefix = "Represent this sentence for searching relevant passages: "

// locatorPattern matches queries that name a specific numbered article or
// section, e.g. "What does Article 21 say?" or "section 4(2)".
var locatorPattern = regexp.MustCompile(`(?i)\b(?:article|section)\s*(\d+(?:\(\d+\))?)`)

// activePair holds the index pair and chunk texts for the currently
// activated document. All fields are immutable after construction.
type activePair struct {
	documentID string
	dense      *dense.Index
	sparse     *sparse.Index
	texts      []string
}

// Retriever builds per-document index pairs and answers hybrid retrieval
// queries against the active pair.
//
// The active pair is shared, read-only, across all concurrent question
// pipelines. Activation takes the write lock and therefore waits for
// in-flight retrievals against the previous pair; retrievals hold the
// read lock, so a partially built pair is never observable.
type Retriever struct {
	store       driven.ChunkStore
	builder     *IndexBuilder
	embedder    driven.EmbeddingService
	queryPrefix string

	mu     sync.RWMutex
	active *activePair
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithQueryPrefix overrides the dense-branch instruction prefix.
// An empty string disables the prefix.
func WithQueryPrefix(prefix string) RetrieverOption {
	return func(r *Retriever) {
		r.queryPrefix = prefix
	}
}

// NewRetriever creates a retriever over the given chunk store.
func NewRetriever(
	store driven.ChunkStore,
	builder *IndexBuilder,
	embedder driven.EmbeddingService,
	opts ...RetrieverOption,
) *Retriever {
	r := &Retriever{
		store:       store,
		builder:     builder,
		embedder:    embedder,
		queryPrefix: DefaultQueryPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Activate loads the document's chunks and rebuilds both indexes,
// replacing the previously active pair. Re-activating the document that
// is already active collapses into a no-op, so concurrent activation
// requests for the same id cause a single rebuild.
func (r *Retriever) Activate(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.active.documentID == documentID {
		logger.Debug("Document %s already active, skipping rebuild", documentID)
		return nil
	}

	// Single fetch drives both index builds; deriving them from separate
	// reads could silently misalign positions.
	chunks, err := r.store.LoadChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load chunks for %s: %w", documentID, err)
	}

	denseIdx, sparseIdx, err := r.builder.Build(ctx, chunks)
	if err != nil {
		return fmt.Errorf("build indexes for %s: %w", documentID, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	r.active = &activePair{
		documentID: documentID,
		dense:      denseIdx,
		sparse:     sparseIdx,
		texts:      texts,
	}

	logger.Info("Activated document %s (%d chunks)", documentID, len(texts))
	return nil
}

// ActiveDocument returns the currently active document id, or "".
func (r *Retriever) ActiveDocument() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return ""
	}
	return r.active.documentID
}

// Retrieve runs dense and sparse rankings for the query and fuses them
// with reciprocal rank fusion, returning up to topK candidates best-first.
// Returns domain.ErrIndexNotReady when no document has been activated.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return nil, domain.ErrIndexNotReady
	}
	if topK <= 0 {
		topK = DefaultRetrieveTopK
	}

	logger.Section("Hybrid Retrieval")
	logger.Debug("Query: %q, topK: %d", query, topK)

	// Dense ranking over the unmodified query (plus instruction prefix).
	queryVec, err := r.embedder.Embed(ctx, r.queryPrefix+query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	denseHits := r.active.dense.Search(queryVec, topK)
	logger.Debug("Dense ranking: %d hits", len(denseHits))

	// Sparse ranking over the locator-augmented query.
	sparseQuery := augmentLocatorQuery(query)
	sparseHits := r.active.sparse.TopK(sparse.Tokenize(sparseQuery), topK)
	logger.Debug("Sparse ranking: %d hits", len(sparseHits))

	fused := fuseRankings(denseHits, sparseHits)
	if topK < len(fused) {
		fused = fused[:topK]
	}

	candidates := make([]domain.Candidate, len(fused))
	for i, f := range fused {
		candidates[i] = domain.Candidate{
			Text:  r.active.texts[f.position],
			Score: f.score,
		}
	}

	logger.Debug("Fused candidates: %d", len(candidates))
	return candidates, nil
}

// augmentLocatorQuery appends the bare locator token plus a trailing
// period when the query names a numbered article or section, matching how
// such locators are rendered inside source documents ("Article 21" ->
// "... 21."). Only the sparse branch sees the augmented text.
func augmentLocatorQuery(query string) string {
	m := locatorPattern.FindStringSubmatch(query)
	if m == nil {
		return query
	}
	augmented := query + " " + m[1] + "."
	logger.Debug("Locator query augmented for sparse ranking: %q", augmented)
	return augmented
}

// fusedPosition pairs a chunk position with its accumulated RRF score.
type fusedPosition struct {
	position int
	score    float64
}

// fuseRankings merges the two rankings with reciprocal rank fusion: each
// position contributes 1/(k+rank+1) from every ranking it appears in.
// Ties keep the order positions were first encountered scanning the dense
// ranking then the sparse ranking, which makes fusion deterministic.
func fuseRankings(denseHits []dense.Hit, sparseHits []sparse.Hit) []fusedPosition {
	scores := make(map[int]float64)
	order := make([]int, 0, len(denseHits)+len(sparseHits))

	for rank, hit := range denseHits {
		if _, seen := scores[hit.Position]; !seen {
			order = append(order, hit.Position)
		}
		scores[hit.Position] += 1.0 / (rrfK + float64(rank) + 1)
	}
	for rank, hit := range sparseHits {
		if _, seen := scores[hit.Position]; !seen {
			order = append(order, hit.Position)
		}
		scores[hit.Position] += 1.0 / (rrfK + float64(rank) + 1)
	}

	fused := make([]fusedPosition, len(order))
	for i, pos := range order {
		fused[i] = fusedPosition{position: pos, score: scores[pos]}
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].score > fused[j].score
	})

	return fused
}
