package bm25

import (
	"testing"

	"github.com/wizenheimer/strata/invindex"
)

func TestScoreMonotonicInTF(t *testing.T) {
	p := Params{K1: 1.5, B: 0.75, AvgDL: 5}
	s1 := Score(p, 1, 3, 10, 5)
	s2 := Score(p, 2, 3, 10, 5)
	s3 := Score(p, 5, 3, 10, 5)
	if !(s1 < s2 && s2 < s3) {
		t.Fatalf("expected strictly increasing score in tf, got %f, %f, %f", s1, s2, s3)
	}
}

func TestScoreMonotonicInDocLen(t *testing.T) {
	p := Params{K1: 1.5, B: 0.75, AvgDL: 5}
	short := Score(p, 2, 3, 10, 3)
	medium := Score(p, 2, 3, 10, 5)
	long := Score(p, 2, 3, 10, 20)
	if !(short > medium && medium > long) {
		t.Fatalf("expected strictly decreasing score in doc length, got %f, %f, %f", short, medium, long)
	}
}

func TestComputeAvgDLEmptyClampsToOne(t *testing.T) {
	if got := ComputeAvgDL(nil); got != 1.0 {
		t.Errorf("ComputeAvgDL(nil) = %f, want 1.0", got)
	}
}

func TestComputeAvgDL(t *testing.T) {
	lens := map[uint32]uint32{0: 4, 1: 6, 2: 8}
	if got := ComputeAvgDL(lens); got != 6.0 {
		t.Errorf("ComputeAvgDL = %f, want 6.0", got)
	}
}

// buildThreeLineCorpus: the query term "cat" appears twice in one document,
// once in another, and not at all in a third — padded with a few more
// cat-free documents so the term's document frequency stays low relative to
// corpus size (a term present in most of the corpus legitimately scores
// non-positive, which would otherwise obscure the ranking behavior this
// test checks).
func buildThreeLineCorpus(t *testing.T) *invindex.Reader {
	t.Helper()
	b := invindex.NewBuilder()
	docs := [][]string{
		{"the", "cat", "sat", "near", "the", "cat", "bowl"}, // cat x2
		{"the", "cat", "slept"},                             // cat x1
		{"the", "dog", "barked"},                            // no cat
		{"birds", "flew", "over", "the", "yard"},            // no cat
		{"a", "fish", "swam", "quietly"},                    // no cat
	}
	for docID, tokens := range docs {
		for pos, tok := range tokens {
			b.AddDoc(invindex.DocID(docID), tok, uint32(pos))
		}
	}
	return b.Finalize()
}

func TestBM25RankingScenario(t *testing.T) {
	r := buildThreeLineCorpus(t)
	rawLens, err := r.DocLens()
	if err != nil {
		t.Fatalf("DocLens: %v", err)
	}
	lens := make(map[uint32]uint32, len(rawLens))
	for d, l := range rawLens {
		lens[uint32(d)] = l
	}
	params := Params{K1: 1.5, B: 0.75, AvgDL: ComputeAvgDL(lens)}

	src := FromInvIndex(r)
	ranked, err := Query(src, []string{"cat"}, params, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked docs (doc2 has no 'cat' and scores 0), got %d: %+v", len(ranked), ranked)
	}
	if ranked[0].DocID != 0 {
		t.Errorf("expected doc 0 (cat x2) to rank first, got %+v", ranked[0])
	}
	if ranked[1].DocID != 1 {
		t.Errorf("expected doc 1 (cat x1) to rank second, got %+v", ranked[1])
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected doc 0's score (%f) to exceed doc 1's (%f)", ranked[0].Score, ranked[1].Score)
	}
	for _, rd := range ranked {
		if rd.DocID == 2 {
			t.Errorf("doc 2 (no 'cat') should not appear in ranked output, got %+v", ranked)
		}
	}
}

func TestTopKTieBreakByDocID(t *testing.T) {
	scores := map[uint32]float64{5: 1.0, 2: 1.0, 9: 1.0}
	ranked := topKFromScores(scores, 10)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked docs, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score != ranked[i].Score {
			t.Fatalf("expected equal scores for tie-break test")
		}
	}
	if ranked[0].DocID != 2 || ranked[1].DocID != 5 || ranked[2].DocID != 9 {
		t.Errorf("tie-break order = %+v, want docids ascending [2 5 9]", ranked)
	}
}

func TestTopKLimitsResults(t *testing.T) {
	scores := map[uint32]float64{1: 3.0, 2: 5.0, 3: 1.0, 4: 9.0}
	ranked := topKFromScores(scores, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked docs, got %d", len(ranked))
	}
	if ranked[0].DocID != 4 || ranked[1].DocID != 2 {
		t.Errorf("top-2 = %+v, want docids [4 2] by descending score", ranked)
	}
}

func TestTopKExcludesNonPositiveScores(t *testing.T) {
	scores := map[uint32]float64{1: 2.0, 2: 0, 3: -1.0}
	ranked := topKFromScores(scores, 10)
	if len(ranked) != 1 || ranked[0].DocID != 1 {
		t.Fatalf("expected only doc 1 to survive, got %+v", ranked)
	}
}
