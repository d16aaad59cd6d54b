// Package bm25 implements Okapi BM25 scoring and top-k aggregation over any
// postings source satisfying the Source interface below.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY A CAPABILITY INTERFACE?
// ═══════════════════════════════════════════════════════════════════════════════
// The scorer needs exactly three things from an index: a term's postings, a
// document's length, and the corpus size (avgdl is supplied separately via
// Params, see ComputeAvgDL). It doesn't need to know whether those postings came from an
// in-memory invindex.Builder, a disk-backed invindex.Reader, or something
// else entirely. Depending on the narrow Source interface instead of a
// concrete invindex.Reader keeps this package reusable and keeps invindex
// free of ranking concerns.
// ═══════════════════════════════════════════════════════════════════════════════
package bm25

import (
	"container/heap"
	"math"
)

// Posting is the minimal per-document fact the scorer needs: which document,
// and how many times the term occurs in it.
type Posting struct {
	DocID uint32
	TF    int
}

// Source is the capability a BM25 query needs from an index. invindex.Reader
// and invindex.CachedReader both satisfy it through the FromInvIndex adapter.
type Source interface {
	// Postings returns the (docID, tf) pairs for term, or an empty slice if
	// the term is unindexed.
	Postings(term string) ([]Posting, error)
	// DocLen returns the total token count of doc.
	DocLen(doc uint32) (uint32, error)
	// NumDocs returns the corpus size N.
	NumDocs() int
}

// Params holds the BM25 tuning knobs. Typical values are k1 in [1.2, 2.0]
// and b = 0.75.
type Params struct {
	K1    float64
	B     float64
	AvgDL float64
}

// DefaultParams returns the textbook Okapi BM25 defaults (k1=1.2, b=0.75)
// with avgdl left at zero — callers must set AvgDL from their corpus (see
// ComputeAvgDL) before scoring.
func DefaultParams() Params {
	return Params{K1: 1.2, B: 0.75}
}

const epsilon = 1e-6

// ComputeAvgDL derives the average document length from every document
// length in docLens, clamped to 1.0 when the corpus is empty or the sum is
// non-positive, so the length-normalization divisor is never zero.
func ComputeAvgDL(docLens map[uint32]uint32) float64 {
	if len(docLens) == 0 {
		return 1.0
	}
	var sum uint64
	for _, l := range docLens {
		sum += uint64(l)
	}
	avg := float64(sum) / float64(len(docLens))
	if avg <= 0 {
		return 1.0
	}
	return avg
}

// Score computes the BM25 contribution of a single term occurrence:
//
//	idf  = ln( (N - df + 0.5) / (df + 0.5) + ε )
//	norm = tf * (k1 + 1) / ( tf + k1 * (1 - b + b * dl / avgdl) )
//	score = idf * norm
//
// idf may be negative for terms that occur in nearly every document; this is
// accepted, not clamped to zero.
func Score(params Params, tf int, df int, numDocs int, docLen uint32) float64 {
	avgdl := params.AvgDL
	if avgdl <= 0 {
		avgdl = 1.0
	}
	idf := math.Log((float64(numDocs)-float64(df)+0.5)/(float64(df)+0.5) + epsilon)
	norm := float64(tf) * (params.K1 + 1) /
		(float64(tf) + params.K1*(1-params.B+params.B*float64(docLen)/avgdl))
	return idf * norm
}

// RankedDoc is one entry of a top-k result: a document and its aggregate
// BM25 score across all query terms.
type RankedDoc struct {
	DocID uint32
	Score float64
}

// Query scores every document touched by any of terms against src, sums
// per-term contributions, and returns the topK highest-scoring documents in
// descending score order (ties broken by smaller docid first). Documents
// with a non-positive total score are excluded from the result entirely
// rather than padding the tail with zero-score entries.
func Query(src Source, terms []string, params Params, topK int) ([]RankedDoc, error) {
	numDocs := src.NumDocs()
	scores := make(map[uint32]float64)

	for _, term := range terms {
		postings, err := src.Postings(term)
		if err != nil {
			return nil, err
		}
		df := len(postings)
		if df == 0 {
			continue
		}
		for _, p := range postings {
			dl, err := src.DocLen(p.DocID)
			if err != nil {
				return nil, err
			}
			scores[p.DocID] += Score(params, p.TF, df, numDocs, dl)
		}
	}

	return topKFromScores(scores, topK), nil
}

// topKFromScores extracts the k highest-scoring (score > 0) entries from
// scores via a small min-heap, then returns them sorted descending by score
// (ties by ascending docid).
func topKFromScores(scores map[uint32]float64, k int) []RankedDoc {
	h := &scoreHeap{}
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		heap.Push(h, RankedDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	result := make([]RankedDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(RankedDoc)
	}
	return result
}

// scoreHeap is a min-heap over RankedDoc ordered by (score asc, docid desc).
// Popping the minimum keeps the k largest scores in the heap, and breaking
// ties by larger docid-first-out means the final reversed slice has smaller
// docids first among equal scores.
type scoreHeap []RankedDoc

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}
func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x any)   { *h = append(*h, x.(RankedDoc)) }
func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
