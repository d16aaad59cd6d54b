// Package sa builds a suffix array and its Kasai LCP array over a byte
// string, the foundation the bwt and fmindex packages build on.
//
// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX ARRAY VIA PREFIX DOUBLING
// ═══════════════════════════════════════════════════════════════════════════════
// The suffix array SA of a string T of length n is the permutation of
// [0, n) that lists every suffix of T in lexicographic order: SA[i] is the
// starting offset of the i-th smallest suffix.
//
// Build sorts suffixes by comparing 2^k-length prefixes, doubling k each
// round: round 0 ranks every suffix by its single leading byte; round r
// ranks by its leading 2^r bytes using the previous round's ranks as a
// precomputed comparator (two 2^(r-1)-prefixes back to back equal a single
// 2^r-prefix). This converges in O(log n) rounds, each an O(n log n) sort,
// for O(n log^2 n) total — slower than SA-IS but a fraction of the code and
// ample for the corpus sizes this toolkit targets.
//
// Requires T to end with a sentinel byte ('$' by convention) that sorts
// before every other byte in the alphabet, so every suffix has a
// well-defined total order with no ties at the end of the string.
// ═══════════════════════════════════════════════════════════════════════════════
package sa

import "sort"

// Build constructs the suffix array of s via prefix doubling.
//
// EXAMPLE:
// --------
//
//	Build([]byte("banana$")) == []int{6, 5, 3, 1, 0, 4, 2}
func Build(s []byte) []int {
	n := len(s)
	suffixes := make([]int, n)
	rank := make([]int32, n)
	tmp := make([]int32, n)
	for i := range s {
		suffixes[i] = i
		rank[i] = int32(s[i])
	}

	keyAt := func(i, k int) (int32, int32) {
		second := int32(-1)
		if i+k < n {
			second = rank[i+k]
		}
		return rank[i], second
	}

	for k := 1; k < n; k <<= 1 {
		sort.Slice(suffixes, func(a, b int) bool {
			ra1, ra2 := keyAt(suffixes[a], k)
			rb1, rb2 := keyAt(suffixes[b], k)
			if ra1 != rb1 {
				return ra1 < rb1
			}
			return ra2 < rb2
		})

		tmp[suffixes[0]] = 0
		for i := 1; i < n; i++ {
			a, b := suffixes[i-1], suffixes[i]
			pa1, pa2 := keyAt(a, k)
			pb1, pb2 := keyAt(b, k)
			tmp[b] = tmp[a]
			if pb1 != pa1 || pb2 != pa2 {
				tmp[b]++
			}
		}
		copy(rank, tmp)

		if int(rank[suffixes[n-1]]) == n-1 {
			break
		}
	}
	return suffixes
}

// LCP computes the Kasai longest-common-prefix array: LCP[r] is the length
// of the common prefix shared by the suffixes at suffix-array ranks r-1 and
// r (LCP[0] is always 0, there being no predecessor).
//
// EXAMPLE:
// --------
//
//	s := []byte("banana$")
//	sa := Build(s) // [6, 5, 3, 1, 0, 4, 2]
//	LCP(s, sa) == []int{0, 0, 1, 3, 0, 0, 2}
func LCP(s []byte, suffixArray []int) []int {
	n := len(s)
	rank := make([]int, n)
	for r, i := range suffixArray {
		rank[i] = r
	}

	lcp := make([]int, n)
	k := 0
	for i := 0; i < n; i++ {
		r := rank[i]
		if r == 0 {
			k = 0
			continue
		}
		j := suffixArray[r-1]
		for i+k < n && j+k < n && s[i+k] == s[j+k] {
			k++
		}
		lcp[r] = k
		if k > 0 {
			k--
		}
	}
	return lcp
}
