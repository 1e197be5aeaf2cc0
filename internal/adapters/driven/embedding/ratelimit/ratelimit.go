// Package ratelimit decorates an embedding service with a client-side
// request rate limit so bulk ingestion cannot saturate the backend.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// DefaultRequestsPerSecond bounds outbound embedding requests.
	DefaultRequestsPerSecond = 10.0

	// DefaultBurst is the token bucket capacity.
	DefaultBurst = 20
)

// EmbeddingService wraps an embedding service, delaying each outbound
// request until the limiter grants a token. A batch counts as one
// request regardless of size.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// New creates a rate-limited wrapper around the given embedding service.
// Non-positive rps or burst fall back to the defaults.
func New(inner driven.EmbeddingService, rps float64, burst int) *EmbeddingService {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a token, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates the whole batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model identifier.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}
