package driven

import (
	"context"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
)

// TextExtractor converts a raw source document into plain text.
// Each extractor handles specific MIME types (e.g., PDF, DOCX).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the plain text content of the raw source.
	// Returns domain.ErrNoTextExtracted when the source contains no text.
	Extract(ctx context.Context, raw *domain.RawSource) (string, error)
}

// ExtractorRegistry selects a TextExtractor for a raw source by its
// detected MIME type. Returns domain.ErrUnsupportedFormat when no
// registered extractor handles the source.
type ExtractorRegistry interface {
	// Extract sniffs the source's MIME type and dispatches to the
	// matching extractor.
	Extract(ctx context.Context, raw *domain.RawSource) (string, error)
}
