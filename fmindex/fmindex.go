// Package fmindex implements an FM-index over a byte string: backward search
// for exact substring matching and locate for recovering text offsets, built
// from a suffix array and Burrows-Wheeler transform (see the sa and bwt
// packages).
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY AN FM-INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// A suffix array answers substring queries in O(m log n) with a pair of
// binary searches, but it needs the full original text plus an O(n)-word SA
// resident to do it. The FM-index trades that for backward search over the
// BWT: O(m) rank queries against 256 compact Occ bitvectors (one per byte
// value) and a small C table, with the ability to sample only every k-th SA
// entry instead of every one of them. The full text is never needed again
// once B is built — everything backward search and locate touch is
// reconstructible from B, C, and the sampled positions.
//
// LF-MAPPING:
// -----------
// LF(r) = C[B[r]] + rank1(Occ_{B[r]}, r). This is the "last column to
// first column" correspondence of the standard rotation matrix: walking
// LF from any row r retraces T backwards one character at a time, starting
// from the text position SA[r].
//
// BACKWARD SEARCH:
// -----------------
// Matching a pattern right-to-left narrows an [l, r) range of rows whose
// suffixes currently share the matched pattern suffix; each step folds in
// one more character via LF's C+rank1 formula. The final range's rows are
// exactly the occurrences of the whole pattern.
// ═══════════════════════════════════════════════════════════════════════════════
package fmindex

import (
	"errors"

	"github.com/wizenheimer/strata/bitrank"
	"github.com/wizenheimer/strata/sparserank"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
var (
	ErrBadMagic          = errors.New("fmindex: bad file magic, not an FMX2 index")
	ErrShortRead         = errors.New("fmindex: unexpected end of file")
	ErrBWTLengthMismatch = errors.New("fmindex: decoded BWT run-length total does not match n")
	ErrInvalidSentinel   = errors.New("fmindex: text must end with the sentinel byte and contain it nowhere else")
)

// sentinel is the byte that must terminate any text this package builds an
// index over; it sorts lower than every other byte in the alphabet so that
// every rotation of T compares unambiguously.
const sentinel = '$'

// MatchRange is a half-open range [L, R) of suffix-array rows, returned by
// BackwardSearch. Its size (R-L) is the pattern's occurrence count.
type MatchRange struct {
	L, R uint64
}

// Len reports the number of occurrences this range represents.
func (m MatchRange) Len() int { return int(m.R - m.L) }

// Index is a built or loaded FM-index. Both states (freshly built, or
// reconstructed from disk via Load) answer identical queries; there is no
// mutation after construction.
type Index struct {
	c   [256]uint64
	occ [256]*bitrank.BitVector
	bwt []byte
	n   int

	saSample  int
	sampFlags *sparserank.Flags
	sampPos   []int
}

// Build constructs an Index from text (must end with the sentinel byte), its
// suffix array, and its BWT. saSample is the SA-sampling period: every
// saSample-th rank is retained for locate; smaller values mean larger
// indexes and faster locate. Values less than 1 are clamped to 1 (sample
// every rank).
func Build(text []byte, suffixArray []int, bwtBytes []byte, saSample int) (*Index, error) {
	if len(text) == 0 || text[len(text)-1] != sentinel {
		return nil, ErrInvalidSentinel
	}
	for _, ch := range text[:len(text)-1] {
		if ch == sentinel {
			// The sentinel must appear exactly once, at the end; an interior
			// occurrence breaks the total order backward search depends on.
			return nil, ErrInvalidSentinel
		}
	}
	if saSample < 1 {
		saSample = 1
	}
	n := len(bwtBytes)

	var freq [256]uint64
	for _, ch := range bwtBytes {
		freq[ch]++
	}
	var c [256]uint64
	var acc uint64
	for i := 0; i < 256; i++ {
		c[i] = acc
		acc += freq[i]
	}

	occ := buildOcc(bwtBytes)

	var onePositions []int
	var sampPos []int
	for rank, pos := range suffixArray {
		if rank%saSample == 0 {
			onePositions = append(onePositions, rank)
			sampPos = append(sampPos, pos)
		}
	}
	sampFlags := sparserank.Build(n, onePositions)

	return &Index{
		c:         c,
		occ:       occ,
		bwt:       append([]byte(nil), bwtBytes...),
		n:         n,
		saSample:  saSample,
		sampFlags: sampFlags,
		sampPos:   sampPos,
	}, nil
}

// buildOcc packs bwtBytes into 256 per-symbol dense bitvectors, one bit per
// BWT row marking whether that row's byte equals the vector's symbol.
func buildOcc(bwtBytes []byte) [256]*bitrank.BitVector {
	n := len(bwtBytes)
	words := (n + 63) / 64
	mats := make([][]uint64, 256)
	for i := range mats {
		mats[i] = make([]uint64, words)
	}
	for i, ch := range bwtBytes {
		w := i >> 6
		b := uint(i & 63)
		mats[ch][w] |= 1 << b
	}
	var occ [256]*bitrank.BitVector
	for ch := 0; ch < 256; ch++ {
		occ[ch] = bitrank.FromWords(mats[ch], n)
	}
	return occ
}

// N returns the length of the indexed text (including the sentinel).
func (idx *Index) N() int { return idx.n }

// occRank returns rank1(Occ_ch, i).
func (idx *Index) occRank(ch byte, i uint64) uint64 {
	return uint64(idx.occ[ch].Rank1(int(i)))
}

// lf computes the LF-mapping of row r.
func (idx *Index) lf(r uint64) uint64 {
	ch := idx.bwt[r]
	return idx.c[ch] + idx.occRank(ch, r)
}

// BackwardSearch matches pattern against the indexed text, right to left,
// and returns the half-open SA-row range [L, R) of every suffix that begins
// with pattern. An empty pattern matches everything ([0, n)). A pattern with
// no occurrences returns a zero-length range (L == R) and ok == false.
func (idx *Index) BackwardSearch(pattern []byte) (rng MatchRange, ok bool) {
	if len(pattern) == 0 {
		return MatchRange{L: 0, R: uint64(idx.n)}, true
	}
	l, r := uint64(0), uint64(idx.n)
	for i := len(pattern) - 1; i >= 0; i-- {
		ch := pattern[i]
		base := idx.c[ch]
		l = base + idx.occRank(ch, l)
		r = base + idx.occRank(ch, r)
		if l >= r {
			return MatchRange{}, false
		}
	}
	return MatchRange{L: l, R: r}, true
}

// isSampled reports whether SA rank r was retained during Build.
func (idx *Index) isSampled(r int) bool {
	return idx.sampFlags.IsSampled(r)
}

// sampledIndex returns the ordinal index of sampled rank r within sampPos.
func (idx *Index) sampledIndex(r int) int {
	return idx.sampFlags.SampledIndex(r)
}

// Locate recovers the text offset SA[r] for a single SA row r, by walking
// LF until a sampled rank is hit. Samples are taken by rank, not by text
// position, so the walk length is not bounded by saSample; it is strictly
// fewer than n, since LF walks all n rows in a single cycle and rank 0 is
// always sampled.
func (idx *Index) Locate(r uint64) int {
	steps := 0
	for {
		ru := int(r)
		if idx.isSampled(ru) {
			pos := idx.sampPos[idx.sampledIndex(ru)]
			return (pos + steps) % idx.n
		}
		r = idx.lf(r)
		steps++
		if steps > idx.n {
			// Unreachable in a correctly built index: LF is always a
			// permutation of [0, n) and every saSample-th rank is sampled,
			// so this path indicates a corrupted index.
			return 0
		}
	}
}

// LocateRange recovers up to limit text offsets for the rows in rng, in
// ascending rank order (not sorted by text position — callers sort if they
// need that).
func (idx *Index) LocateRange(rng MatchRange, limit int) []int {
	take := rng.Len()
	if limit < take {
		take = limit
	}
	if take <= 0 {
		return nil
	}
	out := make([]int, take)
	for i := 0; i < take; i++ {
		out[i] = idx.Locate(rng.L + uint64(i))
	}
	return out
}
