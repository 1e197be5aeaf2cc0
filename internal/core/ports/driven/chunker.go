package driven

// Chunker splits extracted document text into an ordered sequence of
// chunk texts. The splitting policy (window size, overlap) is an adapter
// concern; retrieval only relies on the produced order.
type Chunker interface {
	// Split returns the chunk texts in document order.
	Split(text string) []string
}
