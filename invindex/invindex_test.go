package invindex

import "testing"

func buildFixture(t *testing.T) *Reader {
	t.Helper()
	b := NewBuilder()
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

func TestPostingsCat(t *testing.T) {
	r := buildFixture(t)
	postings, err := r.Postings("cat")
	if err != nil {
		t.Fatalf("Postings(cat): %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings for 'cat', got %d", len(postings))
	}
	if postings[0].DocID != 1 || postings[0].TermFrequency() != 1 || postings[0].Positions[0] != 1 {
		t.Errorf("doc1 cat posting wrong: %+v", postings[0])
	}
	if postings[1].DocID != 2 || postings[1].TermFrequency() != 1 || postings[1].Positions[0] != 1 {
		t.Errorf("doc2 cat posting wrong: %+v", postings[1])
	}
}

func TestPostingsThe(t *testing.T) {
	r := buildFixture(t)
	postings, err := r.Postings("the")
	if err != nil {
		t.Fatalf("Postings(the): %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings for 'the', got %d", len(postings))
	}
	if postings[0].DocID != 1 || postings[0].TermFrequency() != 2 {
		t.Errorf("doc1 'the' expected tf=2, got %+v", postings[0])
	}
	if postings[0].Positions[0] != 0 || postings[0].Positions[1] != 4 {
		t.Errorf("doc1 'the' positions wrong: %v", postings[0].Positions)
	}
	if postings[1].DocID != 2 || postings[1].TermFrequency() != 2 {
		t.Errorf("doc2 'the' expected tf=2, got %+v", postings[1])
	}
	if postings[1].Positions[0] != 0 || postings[1].Positions[1] != 3 {
		t.Errorf("doc2 'the' positions wrong: %v", postings[1].Positions)
	}
}

func TestPostingsMissingTerm(t *testing.T) {
	r := buildFixture(t)
	postings, err := r.Postings("dog")
	if err != nil {
		t.Fatalf("Postings(dog): %v", err)
	}
	if postings != nil {
		t.Errorf("expected nil postings for missing term, got %v", postings)
	}
}

func TestNumDocsAndTerms(t *testing.T) {
	r := buildFixture(t)
	if r.NumDocs() != 3 {
		t.Errorf("NumDocs() = %d, want 3 (max docid 2 + 1)", r.NumDocs())
	}
	terms := r.Terms()
	for i := 1; i < len(terms); i++ {
		if terms[i-1] >= terms[i] {
			t.Fatalf("Terms() not sorted ascending: %v", terms)
		}
	}
	found := map[string]bool{}
	for _, term := range terms {
		found[term] = true
	}
	for _, want := range []string{"the", "cat", "sat", "on", "mat", "ate", "rat"} {
		if !found[want] {
			t.Errorf("Terms() missing %q", want)
		}
	}
}

func TestDocLens(t *testing.T) {
	r := buildFixture(t)
	l1, err := r.DocLen(1)
	if err != nil {
		t.Fatalf("DocLen(1): %v", err)
	}
	if l1 != 6 {
		t.Errorf("DocLen(1) = %d, want 6", l1)
	}
	l2, err := r.DocLen(2)
	if err != nil {
		t.Fatalf("DocLen(2): %v", err)
	}
	if l2 != 5 {
		t.Errorf("DocLen(2) = %d, want 5", l2)
	}
}

func TestDocFrequency(t *testing.T) {
	r := buildFixture(t)
	df, err := r.DocFrequency("cat")
	if err != nil {
		t.Fatalf("DocFrequency(cat): %v", err)
	}
	if df != 2 {
		t.Errorf("DocFrequency(cat) = %d, want 2", df)
	}
	df, err = r.DocFrequency("sat")
	if err != nil {
		t.Fatalf("DocFrequency(sat): %v", err)
	}
	if df != 1 {
		t.Errorf("DocFrequency(sat) = %d, want 1", df)
	}
}

func TestRoundTripThroughDict(t *testing.T) {
	r := buildFixture(t)
	r2 := NewReader(r.Dict(), uint32(r.NumDocs()))
	postings, err := r2.Postings("cat")
	if err != nil {
		t.Fatalf("Postings(cat) after round-trip: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings after round-trip, got %d", len(postings))
	}
}

func TestCorruptBlobDetected(t *testing.T) {
	r := NewReader(map[string][]byte{"bad": {0xFF, 0xFF, 0xFF, 0xFF, 0xFF}}, 1)
	if _, err := r.Postings("bad"); err == nil {
		t.Fatal("expected ErrCorruptPostings for a truncated varint sequence")
	}
}

func TestTrailingGarbageDetected(t *testing.T) {
	// A single well-formed entry (docid=0, freq=0) followed by an extra
	// stray byte that doesn't belong to any further entry.
	blob := []byte{0x00, 0x00, 0x01}
	r := NewReader(map[string][]byte{"bad": blob}, 1)
	if _, err := r.Postings("bad"); err != ErrCorruptPostings {
		t.Fatalf("expected ErrCorruptPostings for trailing garbage, got %v", err)
	}
}
