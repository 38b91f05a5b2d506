// Package rank scores advice items against a message: a BM25 lexical index
// built once over the corpus, then deterministic re-scoring by context links,
// attachment patterns, style tuning and severity fit.
package rank

import (
	"math"

	"github.com/alexanderramin/attune/internal/textutil"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

type bm25Doc struct {
	terms  map[string]int
	length int
}

// BM25Index is an immutable lexical index over the advice corpus. Build it
// once at warm-up; Score is pure and safe for concurrent use.
type BM25Index struct {
	docs   []bm25Doc
	df     map[string]int
	avgLen float64
}

// BuildBM25Index tokenizes the given document texts and computes term and
// document frequencies. Document order is preserved: Score returns one score
// per input text, by position.
func BuildBM25Index(texts []string) *BM25Index {
	idx := &BM25Index{
		docs: make([]bm25Doc, 0, len(texts)),
		df:   map[string]int{},
	}

	var totalLen int
	for _, text := range texts {
		doc := bm25Doc{terms: map[string]int{}}
		for _, tok := range textutil.Tokenize(text) {
			doc.terms[tok]++
			doc.length++
		}
		for term := range doc.terms {
			idx.df[term]++
		}
		totalLen += doc.length
		idx.docs = append(idx.docs, doc)
	}
	if len(idx.docs) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(idx.docs))
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *BM25Index) Len() int { return len(idx.docs) }

// Score computes the BM25 relevance of every indexed document against the
// query terms, returned by document position. Unknown terms contribute
// nothing; an empty query yields all zeros.
func (idx *BM25Index) Score(queryTerms []string) []float64 {
	scores := make([]float64, len(idx.docs))
	if len(queryTerms) == 0 || len(idx.docs) == 0 {
		return scores
	}

	n := float64(len(idx.docs))
	for _, term := range queryTerms {
		df, ok := idx.df[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		for i, doc := range idx.docs {
			tf := float64(doc.terms[term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(doc.length)/idx.avgLen
			scores[i] += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
		}
	}
	return scores
}
