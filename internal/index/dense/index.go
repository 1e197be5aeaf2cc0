// Package dense provides an in-memory exact nearest-neighbour index over
// embedding vectors. Vectors are L2-normalised on insert, so inner-product
// search is equivalent to cosine similarity.
package dense

import (
	"container/heap"
	"fmt"
	"math"
)

// Hit is a nearest-neighbour search result.
type Hit struct {
	// Position is the insertion-order position of the matched vector,
	// which equals the chunk ordinal it was built from.
	Position int

	// Score is the inner-product similarity to the query.
	Score float64
}

// Index holds the chunk vectors for one activated document.
//
// An Index is append-only while being built and read-only once published
// to retrieval; the publishing side serialises the swap, so Search needs
// no internal locking.
type Index struct {
	vectors    [][]float32
	dimensions int
}

// New creates an empty index for vectors of the given dimensionality.
func New(dimensions int) *Index {
	return &Index{
		vectors:    make([][]float32, 0),
		dimensions: dimensions,
	}
}

// Add normalises the vector and appends it to the index.
// Insertion order defines the position reported by Search.
func (x *Index) Add(vec []float32) error {
	if len(vec) != x.dimensions {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(vec), x.dimensions)
	}
	x.vectors = append(x.vectors, Normalize(vec))
	return nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	return len(x.vectors)
}

// Dimensions returns the dimensionality of indexed vectors.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Search returns up to topK positions most similar to the query vector,
// best-first. When the index holds fewer than topK vectors the result is
// simply shorter. A query whose length differs from the index
// dimensionality yields no hits. The query is normalised before scoring.
func (x *Index) Search(query []float32, topK int) []Hit {
	if len(x.vectors) == 0 || topK <= 0 || len(query) != x.dimensions {
		return []Hit{}
	}

	q := Normalize(query)

	// Min-heap tracks the current top-k so the worst candidate can be
	// evicted in O(log k).
	h := &hitHeap{}
	heap.Init(h)

	for pos, v := range x.vectors {
		score := DotProduct(q, v)

		if h.Len() < topK {
			heap.Push(h, Hit{Position: pos, Score: score})
		} else if score > (*h)[0].Score {
			heap.Pop(h)
			heap.Push(h, Hit{Position: pos, Score: score})
		}
	}

	// Drain the heap smallest-first into a descending result.
	results := make([]Hit, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(Hit)
	}

	return results
}

// Normalize scales a vector to unit length (L2 norm = 1).
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, val := range v {
		norm += float64(val) * float64(val)
	}
	if norm == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / norm)
	}
	return out
}

// DotProduct computes the inner product of two vectors.
// For normalised vectors this equals cosine similarity.
func DotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// hitHeap is a min-heap of hits ordered by score, used to evict the
// lowest-scoring candidate while scanning.
type hitHeap []Hit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x interface{}) {
	*h = append(*h, x.(Hit))
}

func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
