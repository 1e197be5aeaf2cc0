package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates no chunks exist for a requested document id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDocument indicates a chunk sequence was empty at index
	// build time. No index is built from an empty document.
	ErrEmptyDocument = errors.New("empty document")

	// ErrIndexNotReady indicates retrieval was attempted before a
	// document was successfully activated. Callers can distinguish
	// "no index" from "no results".
	ErrIndexNotReady = errors.New("index not ready")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates an unknown document format.
	// Text extraction cannot proceed.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoTextExtracted indicates extraction produced no text.
	// Partial chunks are never written for such documents.
	ErrNoTextExtracted = errors.New("no text extracted")

	// ErrExternalService indicates a reranker or answerer call failed
	// or timed out. Recovered locally with a fallback answer, never
	// surfaced to the batch caller.
	ErrExternalService = errors.New("external service failed")
)
