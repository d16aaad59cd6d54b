package phrase

import (
	"testing"

	"github.com/wizenheimer/strata/invindex"
)

func buildFixture(t *testing.T) *invindex.Reader {
	t.Helper()
	b := invindex.NewBuilder()
	doc1 := []string{"the", "cat", "sat", "on", "the", "mat"}
	doc2 := []string{"the", "cat", "ate", "the", "rat"}
	for i, tok := range doc1 {
		b.AddDoc(1, tok, uint32(i))
	}
	for i, tok := range doc2 {
		b.AddDoc(2, tok, uint32(i))
	}
	return b.Finalize()
}

func TestPhraseTheCat(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"the", "cat"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for 'the cat', got %d: %+v", len(matches), matches)
	}
	want := map[invindex.DocID]uint32{1: 0, 2: 0}
	for _, m := range matches {
		if m.Start != want[m.DocID] {
			t.Errorf("doc %d: start = %d, want %d", m.DocID, m.Start, want[m.DocID])
		}
	}
}

func TestPhraseCatSat(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"cat", "sat"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match for 'cat sat' (doc1 only), got %d: %+v", len(matches), matches)
	}
	if matches[0].DocID != 1 || matches[0].Start != 1 {
		t.Errorf("match = %+v, want {DocID:1 Start:1}", matches[0])
	}
}

func TestPhraseCatAte(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"cat", "ate"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match for 'cat ate' (doc2 only), got %d: %+v", len(matches), matches)
	}
	if matches[0].DocID != 2 || matches[0].Start != 1 {
		t.Errorf("match = %+v, want {DocID:2 Start:1}", matches[0])
	}
}

func TestPhraseNoMatch(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"cat", "rat"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for 'cat rat', got %+v", matches)
	}
}

func TestPhraseUnknownTerm(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches != nil {
		t.Fatalf("expected nil matches for a phrase containing an unindexed term, got %+v", matches)
	}
}

func TestPhraseThreeTerms(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"the", "cat", "sat"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].DocID != 1 || matches[0].Start != 0 {
		t.Fatalf("expected single match {DocID:1 Start:0} for 'the cat sat', got %+v", matches)
	}
}

func TestPhraseSingleTerm(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, []string{"the"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	// doc1 has "the" at 0 and 4, doc2 at 0 and 3: four total occurrences.
	if len(matches) != 4 {
		t.Fatalf("expected 4 single-term matches for 'the', got %d: %+v", len(matches), matches)
	}
}

func TestPhraseEmptyQuery(t *testing.T) {
	r := buildFixture(t)
	matches, err := Query(r, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches != nil {
		t.Fatalf("expected nil matches for an empty phrase, got %+v", matches)
	}
}
