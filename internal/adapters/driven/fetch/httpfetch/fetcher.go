// Package httpfetch provides a source fetcher for http(s) URLs with
// client-side rate limiting and 429 backoff.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 60 * time.Second
	DefaultMaxBytes          = 64 << 20 // 64 MiB
	DefaultRequestsPerSecond = 4.0
	DefaultBurstSize         = 8
	defaultBackoffSeconds    = 60
)

// Config holds configuration for the HTTP fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxBytes caps the downloaded body size (default: 64 MiB).
	MaxBytes int64

	// RequestsPerSecond is the sustained request rate (default: 4).
	RequestsPerSecond float64

	// BurstSize is the token bucket burst size (default: 8).
	BurstSize int
}

// Fetcher downloads document sources over HTTP. Requests pass through a
// token bucket, and a 429 response parks the fetcher until the server's
// Retry-After elapses.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64

	mu      sync.Mutex
	retryAt time.Time
}

// NewFetcher creates a new rate-limited HTTP fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch downloads the source behind a http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*domain.RawSource, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return nil, fmt.Errorf("fetch %s: not a http(s) URL: %w", ref, domain.ErrInvalidInput)
	}

	if err := f.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %v", ref, domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", ref, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		f.recordRateLimit(resp.Header.Get("Retry-After"))
		return nil, fmt.Errorf("fetch %s: rate limited: %w", ref, domain.ErrExternalService)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: status %d: %w", ref, resp.StatusCode, domain.ErrExternalService)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes: %w", ref, f.maxBytes, domain.ErrInvalidInput)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return &domain.RawSource{
		Ref:      ref,
		Content:  body,
		MIMEType: mimeType,
	}, nil
}

// wait blocks for any 429 backoff in effect, then for the token bucket.
func (f *Fetcher) wait(ctx context.Context) error {
	f.mu.Lock()
	retryAt := f.retryAt
	f.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return f.limiter.Wait(ctx)
}

// recordRateLimit parks the fetcher per the server's Retry-After header.
func (f *Fetcher) recordRateLimit(retryAfter string) {
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds <= 0 {
		seconds = defaultBackoffSeconds
	}

	f.mu.Lock()
	f.retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
	f.mu.Unlock()
}
