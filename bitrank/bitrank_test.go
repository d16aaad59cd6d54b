package bitrank

import (
	"math/rand"
	"testing"
)

func naiveRank1(bits []bool, pos int) int {
	count := 0
	for i := 0; i < pos && i < len(bits); i++ {
		if bits[i] {
			count++
		}
	}
	return count
}

func TestRank1SmallExample(t *testing.T) {
	// 0b01101001 read LSB-first as bit positions 0..7: 1,0,0,1,0,1,1,0
	bv := From(8, 0, 3, 5, 6)
	cases := []struct {
		pos  int
		want int
	}{
		{0, 0},
		{1, 1},
		{4, 2},
		{8, 4},
	}
	for _, c := range cases {
		if got := bv.Rank1(c.pos); got != c.want {
			t.Errorf("Rank1(%d) = %d, want %d", c.pos, got, c.want)
		}
	}
}

func TestRank1AgainstNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(2000) + 1
		bits := make([]bool, n)
		var ones []int
		for i := range bits {
			if rng.Intn(3) == 0 {
				bits[i] = true
				ones = append(ones, i)
			}
		}
		bv := From(n, ones...)

		if got := bv.Rank1(0); got != 0 {
			t.Fatalf("Rank1(0) = %d, want 0", got)
		}

		total := naiveRank1(bits, n)
		if got := bv.Rank1(n); got != total {
			t.Fatalf("Rank1(n) = %d, want total popcount %d", got, total)
		}

		prev := -1
		for i := 0; i <= n; i++ {
			want := naiveRank1(bits, i)
			got := bv.Rank1(i)
			if got != want {
				t.Fatalf("n=%d Rank1(%d) = %d, want %d", n, i, got, want)
			}
			if got < prev {
				t.Fatalf("Rank1 not monotone at pos=%d: %d < %d", i, got, prev)
			}
			prev = got
		}
	}
}

func TestRank1MultiWord(t *testing.T) {
	// Spread ones across several superblocks (512 bits each).
	n := 2000
	ones := []int{0, 63, 64, 511, 512, 513, 1000, 1999}
	bv := From(n, ones...)
	bits := make([]bool, n)
	for _, o := range ones {
		bits[o] = true
	}
	for i := 0; i <= n; i += 37 {
		want := naiveRank1(bits, i)
		if got := bv.Rank1(i); got != want {
			t.Errorf("Rank1(%d) = %d, want %d", i, got, want)
		}
	}
}
