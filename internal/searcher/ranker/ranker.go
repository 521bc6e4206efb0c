package ranker

import (
	"cmp"
	"math"
	"slices"
)

// DefaultEpsilon is the relevance difference below which two results are
// ranked as equally relevant.
const DefaultEpsilon = 1e-6

type ScoredDoc struct {
	DocID     int     `json:"document_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// IDF is ln(totalDocs / docFreq). docFreq must be positive: words absent
// from the index have no IDF and are skipped by callers.
func IDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Compare orders a before b when a is more relevant. Equal relevances, or
// relevances within epsilon, tie and fall back to rating, then document id.
func Compare(a, b ScoredDoc, epsilon float64) int {
	if a.Relevance != b.Relevance && math.Abs(a.Relevance-b.Relevance) >= epsilon {
		return cmp.Compare(b.Relevance, a.Relevance)
	}
	if a.Rating != b.Rating {
		return cmp.Compare(b.Rating, a.Rating)
	}
	return cmp.Compare(a.DocID, b.DocID)
}

// Rank sorts docs in place by relevance and rating and truncates the result
// to limit entries. A non-positive limit keeps everything.
func Rank(docs []ScoredDoc, limit int, epsilon float64) []ScoredDoc {
	slices.SortStableFunc(docs, func(a, b ScoredDoc) int {
		return Compare(a, b, epsilon)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}
