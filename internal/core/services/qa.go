package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

// Ensure QAOrchestrator implements the interface.
var _ driving.QAService = (*QAOrchestrator)(nil)

// Fixed answers the orchestrator substitutes instead of surfacing
// per-question failures to the batch caller.
const (
	// NoResultsAnswer is returned when retrieval yields no candidates.
	NoResultsAnswer = "No relevant information found for this question."

	// FallbackAnswer is returned when the reranker or answerer fails
	// or times out for a question.
	FallbackAnswer = "I apologize, but I couldn't generate an answer at this time."
)

// Default pipeline parameters.
const (
	DefaultRerankTopK    = 5
	DefaultRerankWorkers = 4
	DefaultAnswerTimeout = 60 * time.Second
)

// QAOrchestrator coordinates document ingestion, single-flight index
// activation and concurrent multi-question answering.
type QAOrchestrator struct {
	store     driven.ChunkStore
	fetcher   driven.SourceFetcher
	extractor driven.ExtractorRegistry
	chunker   driven.Chunker
	retriever driving.RetrievalService
	reranker  driven.Reranker
	answerer  driven.Answerer

	retrieveTopK  int
	rerankTopK    int
	rerankWorkers int
	answerTimeout time.Duration
}

// QAOption configures a QAOrchestrator.
type QAOption func(*QAOrchestrator)

// WithRetrieveTopK sets how many fused candidates retrieval produces.
func WithRetrieveTopK(k int) QAOption {
	return func(o *QAOrchestrator) {
		if k > 0 {
			o.retrieveTopK = k
		}
	}
}

// WithRerankTopK sets how many snippets survive reranking.
func WithRerankTopK(k int) QAOption {
	return func(o *QAOrchestrator) {
		if k > 0 {
			o.rerankTopK = k
		}
	}
}

// WithRerankWorkers bounds the worker pool for CPU-heavy rerank calls.
func WithRerankWorkers(n int) QAOption {
	return func(o *QAOrchestrator) {
		if n > 0 {
			o.rerankWorkers = n
		}
	}
}

// WithAnswerTimeout bounds each answerer call.
func WithAnswerTimeout(d time.Duration) QAOption {
	return func(o *QAOrchestrator) {
		if d > 0 {
			o.answerTimeout = d
		}
	}
}

// NewQAOrchestrator creates the question-answering orchestrator.
func NewQAOrchestrator(
	store driven.ChunkStore,
	fetcher driven.SourceFetcher,
	extractor driven.ExtractorRegistry,
	chunker driven.Chunker,
	retriever driving.RetrievalService,
	reranker driven.Reranker,
	answerer driven.Answerer,
	opts ...QAOption,
) *QAOrchestrator {
	o := &QAOrchestrator{
		store:         store,
		fetcher:       fetcher,
		extractor:     extractor,
		chunker:       chunker,
		retriever:     retriever,
		reranker:      reranker,
		answerer:      answerer,
		retrieveTopK:  DefaultRetrieveTopK,
		rerankTopK:    DefaultRerankTopK,
		rerankWorkers: DefaultRerankWorkers,
		answerTimeout: DefaultAnswerTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EnsureDocument guarantees chunks exist for the source behind ref.
// On a cache hit nothing is fetched, extracted or chunked - re-processing
// an already-seen document must never happen. Extraction errors propagate
// unchanged and no partial chunks are written.
func (o *QAOrchestrator) EnsureDocument(ctx context.Context, ref string) (string, error) {
	documentID := domain.Fingerprint(ref)

	exists, err := o.store.ChunksExist(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("check chunks for %s: %w", documentID, err)
	}
	if exists {
		logger.Debug("Document %s already ingested, skipping extraction", documentID)
		return documentID, nil
	}

	runID := uuid.NewString()[:8]
	logger.Section("Document Ingestion")
	logger.Info("Ingest %s: %s as document %s", runID, ref, documentID)

	raw, err := o.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref, err)
	}

	text, err := o.extractor.Extract(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ref, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extract %s: %w", ref, domain.ErrNoTextExtracted)
	}

	chunks := o.chunker.Split(text)
	count, err := o.store.ReplaceChunks(ctx, documentID, chunks)
	if err != nil {
		return "", fmt.Errorf("store chunks for %s: %w", documentID, err)
	}

	logger.Info("Ingest %s: stored %d chunks for document %s", runID, count, documentID)
	return documentID, nil
}

// Activate builds the in-memory index pair for the document. It must
// complete before AnswerAll is called for that document.
func (o *QAOrchestrator) Activate(ctx context.Context, documentID string) error {
	return o.retriever.Activate(ctx, documentID)
}

// AnswerAll answers every question concurrently against the active
// document. Results are placed by original question index, never by
// completion order. A failure in one question's rerank or answer stage
// yields FallbackAnswer in that slot and leaves the rest of the batch
// untouched.
func (o *QAOrchestrator) AnswerAll(ctx context.Context, questions []string) []string {
	answers := make([]string, len(questions))
	if len(questions) == 0 {
		return answers
	}

	batchID := uuid.NewString()[:8]
	logger.Section("Question Batch")
	logger.Info("Batch %s: answering %d questions", batchID, len(questions))

	// Bounded pool for the CPU-heavy rerank stage so one slow question
	// cannot monopolise the pipeline.
	rerankSlots := make(chan struct{}, o.rerankWorkers)

	var wg sync.WaitGroup
	for i, question := range questions {
		wg.Add(1)
		go func(idx int, q string) {
			defer wg.Done()
			answers[idx] = o.answerOne(ctx, batchID, q, rerankSlots)
		}(i, question)
	}
	wg.Wait()

	logger.Info("Batch %s: complete", batchID)
	return answers
}

// answerOne runs the retrieve-rerank-answer pipeline for a single
// question. All failures past retrieval are contained here; this is the
// single point that converts errors into the fallback answer.
func (o *QAOrchestrator) answerOne(ctx context.Context, batchID, question string, rerankSlots chan struct{}) string {
	candidates, err := o.retriever.Retrieve(ctx, question, o.retrieveTopK)
	if err != nil {
		logger.Warn("Batch %s: retrieval failed for %q: %v", batchID, question, err)
		return FallbackAnswer
	}
	if len(candidates) == 0 {
		logger.Debug("Batch %s: no candidates for %q", batchID, question)
		return NoResultsAnswer
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	select {
	case rerankSlots <- struct{}{}:
	case <-ctx.Done():
		logger.Warn("Batch %s: cancelled before rerank of %q", batchID, question)
		return FallbackAnswer
	}
	snippets, err := o.reranker.Rerank(ctx, question, texts, o.rerankTopK)
	<-rerankSlots

	if err != nil {
		logger.Warn("Batch %s: rerank failed for %q: %v", batchID, question,
			fmt.Errorf("%w: %v", domain.ErrExternalService, err))
		return FallbackAnswer
	}

	answerCtx, cancel := context.WithTimeout(ctx, o.answerTimeout)
	defer cancel()

	answer, err := o.answerer.Answer(answerCtx, question, snippets)
	if err != nil {
		logger.Warn("Batch %s: answer generation failed for %q: %v", batchID, question,
			fmt.Errorf("%w: %v", domain.ErrExternalService, err))
		return FallbackAnswer
	}

	return answer
}
