package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

type mockFetcher struct {
	content []byte
	calls   int32
	err     error
}

func (m *mockFetcher) Fetch(_ context.Context, ref string) (*domain.RawSource, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RawSource{Ref: ref, Content: m.content, MIMEType: "text/plain"}, nil
}

type mockExtractorRegistry struct {
	text  string
	calls int32
	err   error
}

func (m *mockExtractorRegistry) Extract(_ context.Context, _ *domain.RawSource) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockChunker struct{}

func (mockChunker) Split(text string) []string {
	return strings.Split(text, "\n")
}

// mockRetrievalService serves canned candidates per question.
type mockRetrievalService struct {
	active     string
	candidates map[string][]domain.Candidate
	err        error
}

func (m *mockRetrievalService) Activate(_ context.Context, documentID string) error {
	m.active = documentID
	return nil
}

func (m *mockRetrievalService) ActiveDocument() string { return m.active }

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, _ int) ([]domain.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates[query], nil
}

type mockReranker struct {
	failFor string
	delay   time.Duration
}

func (m *mockReranker) Rerank(ctx context.Context, query string, candidates []string, topK int) ([]string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.failFor != "" && query == m.failFor {
		return nil, errors.New("rerank backend unavailable")
	}
	if topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (m *mockReranker) ModelName() string { return "mock-rerank" }

type mockAnswerer struct {
	failFor  string
	delayFor string
	delay    time.Duration
}

func (m *mockAnswerer) Answer(ctx context.Context, query string, snippets []string) (string, error) {
	if m.failFor != "" && query == m.failFor {
		return "", errors.New("llm backend unavailable")
	}
	if m.delayFor != "" && query == m.delayFor {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return fmt.Sprintf("answer to %q from %d snippets", query, len(snippets)), nil
}

func (m *mockAnswerer) ModelName() string { return "mock-llm" }

type qaFixture struct {
	store     *mockChunkStore
	fetcher   *mockFetcher
	extractor *mockExtractorRegistry
	retrieval *mockRetrievalService
	reranker  *mockReranker
	answerer  *mockAnswerer
}

func newQAOrchestratorForTest(opts ...QAOption) (*QAOrchestrator, *qaFixture) {
	f := &qaFixture{
		store:     newMockChunkStore(),
		fetcher:   &mockFetcher{content: []byte("raw bytes")},
		extractor: &mockExtractorRegistry{text: "first chunk\nsecond chunk"},
		retrieval: &mockRetrievalService{candidates: make(map[string][]domain.Candidate)},
		reranker:  &mockReranker{},
		answerer:  &mockAnswerer{},
	}
	o := NewQAOrchestrator(
		f.store, f.fetcher, f.extractor, mockChunker{},
		f.retrieval, f.reranker, f.answerer, opts...,
	)
	return o, f
}

func TestEnsureDocument_IngestsOnce(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	ctx := context.Background()

	id, err := o.EnsureDocument(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint("policy.pdf"), id)

	chunks, err := f.store.LoadChunks(ctx, id)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	// Second call is a cache hit: nothing is fetched or extracted again.
	again, err := o.EnsureDocument(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, int32(1), f.fetcher.calls)
	assert.Equal(t, int32(1), f.extractor.calls)
}

func TestEnsureDocument_LogsCorrelatedRunID(t *testing.T) {
	var buf strings.Builder
	logger.SetVerbose(true)
	logger.SetOutput(&buf)
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()

	o, _ := newQAOrchestratorForTest()
	_, err := o.EnsureDocument(context.Background(), "policy.pdf")
	require.NoError(t, err)

	// Both ingestion lines carry the same run id so a single ingest can
	// be followed through interleaved verbose output.
	matches := regexp.MustCompile(`Ingest ([0-9a-f-]{8}):`).FindAllStringSubmatch(buf.String(), -1)
	require.Len(t, matches, 2)
	assert.Equal(t, matches[0][1], matches[1][1])
}

func TestEnsureDocument_FetchError(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	f.fetcher.err = domain.ErrNotFound

	_, err := o.EnsureDocument(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureDocument_NoTextExtracted(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	f.extractor.text = "   \n\t  "

	_, err := o.EnsureDocument(context.Background(), "blank.pdf")
	assert.ErrorIs(t, err, domain.ErrNoTextExtracted)

	exists, storeErr := f.store.ChunksExist(context.Background(), domain.Fingerprint("blank.pdf"))
	require.NoError(t, storeErr)
	assert.False(t, exists, "no partial chunks after a failed extraction")
}

func TestEnsureDocument_ExtractionErrorPropagates(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	f.extractor.err = domain.ErrUnsupportedFormat

	_, err := o.EnsureDocument(context.Background(), "image.png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestAnswerAll_PreservesQuestionOrder(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	questions := []string{"q-zero", "q-one", "q-two"}
	for _, q := range questions {
		f.retrieval.candidates[q] = []domain.Candidate{{Text: "context for " + q, Score: 1}}
	}
	// The middle question finishes last; its answer must still land in
	// the middle slot.
	f.answerer.delayFor = "q-one"
	f.answerer.delay = 50 * time.Millisecond

	answers := o.AnswerAll(context.Background(), questions)
	require.Len(t, answers, 3)
	for i, q := range questions {
		assert.Contains(t, answers[i], q)
	}
}

func TestAnswerAll_EmptyBatch(t *testing.T) {
	o, _ := newQAOrchestratorForTest()
	assert.Empty(t, o.AnswerAll(context.Background(), nil))
}

func TestAnswerAll_NoCandidatesPlaceholder(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	f.retrieval.candidates["answerable"] = []domain.Candidate{{Text: "relevant text", Score: 1}}

	answers := o.AnswerAll(context.Background(), []string{"answerable", "unanswerable"})
	require.Len(t, answers, 2)
	assert.NotEqual(t, NoResultsAnswer, answers[0])
	assert.Equal(t, NoResultsAnswer, answers[1])
}

func TestAnswerAll_RerankFailureIsContained(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	for _, q := range []string{"good", "bad"} {
		f.retrieval.candidates[q] = []domain.Candidate{{Text: "context", Score: 1}}
	}
	f.reranker.failFor = "bad"

	answers := o.AnswerAll(context.Background(), []string{"good", "bad"})
	require.Len(t, answers, 2)
	assert.Contains(t, answers[0], "good")
	assert.Equal(t, FallbackAnswer, answers[1])
}

func TestAnswerAll_AnswerFailureIsContained(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	for _, q := range []string{"good", "bad"} {
		f.retrieval.candidates[q] = []domain.Candidate{{Text: "context", Score: 1}}
	}
	f.answerer.failFor = "bad"

	answers := o.AnswerAll(context.Background(), []string{"bad", "good"})
	require.Len(t, answers, 2)
	assert.Equal(t, FallbackAnswer, answers[0])
	assert.Contains(t, answers[1], "good")
}

func TestAnswerAll_RetrievalErrorFallsBack(t *testing.T) {
	o, f := newQAOrchestratorForTest()
	f.retrieval.err = domain.ErrIndexNotReady

	answers := o.AnswerAll(context.Background(), []string{"anything"})
	require.Len(t, answers, 1)
	assert.Equal(t, FallbackAnswer, answers[0])
}

func TestAnswerAll_AnswerTimeout(t *testing.T) {
	o, f := newQAOrchestratorForTest(WithAnswerTimeout(20 * time.Millisecond))
	f.retrieval.candidates["slow"] = []domain.Candidate{{Text: "context", Score: 1}}
	f.answerer.delayFor = "slow"
	f.answerer.delay = time.Second

	start := time.Now()
	answers := o.AnswerAll(context.Background(), []string{"slow"})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, FallbackAnswer, answers[0])
}

func TestAnswerAll_RerankTopKLimitsSnippets(t *testing.T) {
	o, f := newQAOrchestratorForTest(WithRerankTopK(2))
	many := make([]domain.Candidate, 10)
	for i := range many {
		many[i] = domain.Candidate{Text: fmt.Sprintf("candidate %d", i), Score: float64(10 - i)}
	}
	f.retrieval.candidates["q"] = many

	answers := o.AnswerAll(context.Background(), []string{"q"})
	require.Len(t, answers, 1)
	assert.Contains(t, answers[0], "from 2 snippets")
}

func TestActivate_Delegates(t *testing.T) {
	o, f := newQAOrchestratorForTest()

	require.NoError(t, o.Activate(context.Background(), "doc-42"))
	assert.Equal(t, "doc-42", f.retrieval.active)
}
