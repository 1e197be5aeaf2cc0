// Package sparse provides an in-memory BM25 lexical index over tokenised
// chunk text. It is the sparse counterpart of the dense embedding index;
// both are rebuilt together from the same chunk sequence.
package sparse

import (
	"math"
	"sort"
	"strings"
)

// Okapi BM25 parameters.
const (
	k1 = 1.5
	b  = 0.75

	// epsilon floors negative IDF values (terms present in most
	// documents) at a fraction of the average IDF instead of letting
	// them subtract relevance.
	epsilon = 0.25
)

// Hit is a lexical relevance result.
type Hit struct {
	// Position is the document's position in the indexed corpus,
	// which equals the chunk ordinal it was built from.
	Position int

	// Score is the BM25 relevance score.
	Score float64
}

// Index holds BM25 term statistics for one activated document's chunks.
//
// Like the dense index, it is built once during activation and read-only
// afterwards, so scoring needs no internal locking.
type Index struct {
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// Tokenize splits text into terms on whitespace. The same tokenizer is
// used for corpus and queries so term statistics line up.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// New builds a BM25 index over the tokenised corpus.
// Document order is preserved: corpus position i scores as position i.
func New(corpus [][]string) *Index {
	n := len(corpus)

	x := &Index{
		termFreqs: make([]map[string]int, n),
		docLens:   make([]int, n),
		idf:       make(map[string]float64),
	}

	docFreqs := make(map[string]int)
	totalLen := 0

	for i, doc := range corpus {
		freqs := make(map[string]int, len(doc))
		for _, term := range doc {
			freqs[term]++
		}
		for term := range freqs {
			docFreqs[term]++
		}
		x.termFreqs[i] = freqs
		x.docLens[i] = len(doc)
		totalLen += len(doc)
	}

	if n > 0 {
		x.avgDocLen = float64(totalLen) / float64(n)
	}

	// Standard Okapi IDF, with negative values floored to a fraction of
	// the average so very common terms still contribute positively.
	var idfSum float64
	var negative []string
	for term, df := range docFreqs {
		idf := math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
		x.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(docFreqs) > 0 {
		floor := epsilon * idfSum / float64(len(docFreqs))
		for _, term := range negative {
			x.idf[term] = floor
		}
	}

	return x
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	return len(x.termFreqs)
}

// Scores returns the BM25 score of every indexed document against the
// query terms, in corpus order.
func (x *Index) Scores(query []string) []float64 {
	scores := make([]float64, len(x.termFreqs))

	for _, term := range query {
		idf, ok := x.idf[term]
		if !ok {
			continue
		}
		for i, freqs := range x.termFreqs {
			f := float64(freqs[term])
			if f == 0 {
				continue
			}
			norm := 1 - b + b*float64(x.docLens[i])/x.avgDocLen
			scores[i] += idf * f * (k1 + 1) / (f + k1*norm)
		}
	}

	return scores
}

// TopK returns up to topK document positions by descending BM25 score.
// Equal scores keep ascending position order for determinism.
func (x *Index) TopK(query []string, topK int) []Hit {
	scores := x.Scores(query)

	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{Position: i, Score: s}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK > 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}
