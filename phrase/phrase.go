// Package phrase implements exact phrase matching over a positional inverted
// index: given an ordered list of terms, find every document and starting
// offset where those terms occur consecutively.
//
// ═══════════════════════════════════════════════════════════════════════════════
// PHRASE MATCHING VIA POSITION-SHIFT INTERSECTION
// ═══════════════════════════════════════════════════════════════════════════════
// A naive phrase check would scan each candidate document's raw text. We can
// do better by working entirely from the posting lists already built by
// invindex: a document matches "cat sat" if some position p holds "cat" and
// position p+1 holds "sat".
//
// The algorithm works from the posting lists of all query terms at once:
//
//  1. Intersect docids present in every term's posting list (documents
//     missing any term can't possibly match), using a per-term docid map.
//  2. Within each candidate document, take every position s of term 0 as a
//     candidate start and check by binary search that term i occurs at
//     s+i: a phrase of length k matches at start position s iff term 0
//     occurs at s, term 1 occurs at s+1, ..., term k-1 occurs at s+k-1.
//
// ═══════════════════════════════════════════════════════════════════════════════
package phrase

import (
	"sort"

	"github.com/wizenheimer/strata/invindex"
)

// PostingsSource is the capability a phrase query needs from an index
// reader: decode the posting list for a single term. invindex.Reader and
// invindex.CachedReader both satisfy this.
type PostingsSource interface {
	Postings(term string) ([]invindex.Posting, error)
}

// Match records a single phrase occurrence: the document it was found in
// and the 0-based position of the phrase's first term.
type Match struct {
	DocID invindex.DocID
	Start uint32
}

// Query finds every occurrence of the consecutive sequence of terms (already
// tokenized and normalized the same way the index was built) across src.
// An empty terms slice matches nothing. A single-term query degenerates to
// "every position that term occurs at", which is still useful as the base
// case other callers (proximity search, query expansion) can build on.
func Query(src PostingsSource, terms []string) ([]Match, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	postingsByTerm := make([][]invindex.Posting, len(terms))
	for i, term := range terms {
		p, err := src.Postings(term)
		if err != nil {
			return nil, err
		}
		if len(p) == 0 {
			// Any term with zero postings makes the whole phrase
			// unsatisfiable.
			return nil, nil
		}
		postingsByTerm[i] = p
	}

	docSets := make([]map[invindex.DocID]invindex.Posting, len(terms))
	for i, postings := range postingsByTerm {
		m := make(map[invindex.DocID]invindex.Posting, len(postings))
		for _, p := range postings {
			m[p.DocID] = p
		}
		docSets[i] = m
	}

	candidates := intersectDocIDs(postingsByTerm[0], docSets)

	var matches []Match
	for _, docID := range candidates {
		positionLists := make([][]uint32, len(terms))
		for i, set := range docSets {
			positionLists[i] = set[docID].Positions
		}
		for _, start := range matchStartsInDoc(positionLists) {
			matches = append(matches, Match{DocID: docID, Start: start})
		}
	}
	return matches, nil
}

// intersectDocIDs returns, in ascending order, the docids present in every
// term's posting list, seeded from the first term's (arbitrary but
// deterministic) docid order.
func intersectDocIDs(first []invindex.Posting, docSets []map[invindex.DocID]invindex.Posting) []invindex.DocID {
	var candidates []invindex.DocID
	for _, p := range first {
		inAll := true
		for _, set := range docSets[1:] {
			if _, ok := set[p.DocID]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			candidates = append(candidates, p.DocID)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates
}

// matchStartsInDoc runs the position-shift merge across one document's
// per-term position lists (each already ascending, as invindex guarantees)
// and returns every starting offset at which all terms occur consecutively.
//
// Candidate starts are drawn from the first term's positions (shifted by 0,
// i.e. unchanged); for each candidate s, every other term i must contain
// s+i in its position list. Membership is checked with a binary search
// since each list is already sorted.
func matchStartsInDoc(positionLists [][]uint32) []uint32 {
	if len(positionLists[0]) == 0 {
		return nil
	}
	var starts []uint32
	for _, s := range positionLists[0] {
		match := true
		for i := 1; i < len(positionLists); i++ {
			if !containsSorted(positionLists[i], s+uint32(i)) {
				match = false
				break
			}
		}
		if match {
			starts = append(starts, s)
		}
	}
	return starts
}

// containsSorted reports whether target appears in the ascending slice xs,
// via binary search.
func containsSorted(xs []uint32, target uint32) bool {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] >= target })
	return i < len(xs) && xs[i] == target
}
