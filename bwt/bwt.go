// Package bwt computes the Burrows-Wheeler transform of a string from its
// suffix array.
//
// ═══════════════════════════════════════════════════════════════════════════════
// BWT FROM A SUFFIX ARRAY
// ═══════════════════════════════════════════════════════════════════════════════
// The BWT rearranges T's bytes so that repeated substrings cluster into
// runs, which is what makes the FM-index's Occ rank vectors small enough to
// afford storing 256 of them. Given the suffix array, the transform is
// read off directly: row r of the (conceptual) table of all rotations of T
// is the suffix starting at SA[r]; the BWT's r-th byte is the byte that
// immediately precedes that suffix — T[SA[r]-1], wrapping to T[n-1] when
// SA[r] is 0.
//
// The row where SA[r] == 0 (T's entire suffix, i.e. all of T) is the
// "primary index" — the row an inverse-BWT walk must start from to recover
// T exactly. The FM-index here never runs an inverse-BWT (LF-mapping reads
// directly off of B), so primary is carried only as a structural fact of
// the transform, not something LF-mapping or backward search consults.
// ═══════════════════════════════════════════════════════════════════════════════
package bwt

// FromSuffixArray computes B, the BWT of s, and the primary index (the
// suffix-array rank whose suffix is all of s), given s and its already
// computed suffix array.
//
// EXAMPLE:
// --------
//
//	s := []byte("banana$")
//	sa := []int{6, 5, 3, 1, 0, 4, 2}
//	b, primary := FromSuffixArray(s, sa) // b == "annb$aa", primary == 4
func FromSuffixArray(s []byte, suffixArray []int) (b []byte, primary int) {
	n := len(s)
	b = make([]byte, n)
	for r, i := range suffixArray {
		if i == 0 {
			b[r] = s[n-1]
			primary = r
		} else {
			b[r] = s[i-1]
		}
	}
	return b, primary
}
