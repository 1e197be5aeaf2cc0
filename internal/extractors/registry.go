// Package extractors dispatches raw sources to the text extractor that
// handles their format. Detection prefers the declared MIME type and
// falls back to content sniffing.
package extractors

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to text extractors.
type Registry struct {
	byMIME map[string]driven.TextExtractor
}

// NewRegistry builds a registry from the given extractors. When two
// extractors claim the same MIME type the first one registered wins.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	byMIME := make(map[string]driven.TextExtractor)
	for _, e := range extractors {
		for _, mimeType := range e.SupportedMIMETypes() {
			if _, taken := byMIME[mimeType]; !taken {
				byMIME[mimeType] = e
			}
		}
	}
	return &Registry{byMIME: byMIME}
}

// Extract resolves the source's MIME type and dispatches to the matching
// extractor. Returns domain.ErrUnsupportedFormat when no extractor
// handles the format.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawSource) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	mimeType := detectMIMEType(raw)
	logger.Debug("Source %s resolved to MIME type %s", raw.Ref, mimeType)

	extractor, ok := r.byMIME[mimeType]
	if !ok {
		return "", fmt.Errorf("no extractor for %s (%s): %w", mimeType, raw.Ref, domain.ErrUnsupportedFormat)
	}
	return extractor.Extract(ctx, raw)
}

// Magic byte prefixes for formats http.DetectContentType reports too
// generically.
var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// detectMIMEType returns the declared MIME type stripped of parameters,
// sniffing the content when no type was declared.
func detectMIMEType(raw *domain.RawSource) string {
	mimeType := raw.MIMEType
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}

	switch {
	case bytes.HasPrefix(raw.Content, pdfMagic):
		return "application/pdf"
	case bytes.HasPrefix(raw.Content, zipMagic):
		// DOCX is the only zip-based format we extract
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}

	sniffed := http.DetectContentType(raw.Content)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return strings.TrimSpace(sniffed)
}
