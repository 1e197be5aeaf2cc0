package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Chunk is a contiguous slice of a document's extracted text and the unit
// of retrieval. Chunks are immutable once stored.
type Chunk struct {
	// ID is the storage-assigned identifier, unique per document.
	ID int64

	// DocumentID links the chunk to its parent document.
	DocumentID string

	// Text is the chunk content.
	Text string

	// Ordinal is the position within the original extraction order.
	Ordinal int
}

// RawSource is an unprocessed document as fetched from its origin,
// before text extraction.
type RawSource struct {
	// Ref is the original location (URL or file path).
	Ref string

	// Content is the raw document bytes.
	Content []byte

	// MIMEType is the detected content type, when known.
	MIMEType string
}

// Candidate is a retrieved chunk with its fused relevance score.
// Candidates are produced by hybrid retrieval and never persisted.
type Candidate struct {
	// Text is the chunk content.
	Text string

	// Score is the reciprocal-rank-fusion score.
	Score float64
}

// Fingerprint derives a stable document identifier from a source
// reference. The same reference always maps to the same id, so repeated
// ingestion of a source is detected as a cache hit.
func Fingerprint(ref string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ref)))
	return hex.EncodeToString(sum[:])[:8]
}
