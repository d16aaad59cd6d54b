package boolq

import (
	"testing"

	"github.com/wizenheimer/strata/invindex"
)

func buildFixture(t *testing.T) *invindex.Reader {
	t.Helper()
	b := invindex.NewBuilder()
	docs := [][]string{
		{"cat", "bowl"},
		{"dog", "bowl"},
		{"cat", "dog"},
		{"snake"},
		{"cat", "snake"},
	}
	for docID, tokens := range docs {
		for pos, tok := range tokens {
			b.AddDoc(invindex.DocID(docID), tok, uint32(pos))
		}
	}
	return b.Finalize()
}

func toSet(xs []uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func TestTermAlone(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).Term("cat").Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := toSet([]uint32{0, 2, 4})
	if len(got) != len(want) {
		t.Fatalf("got %v, want docs %v", got, want)
	}
	for _, d := range got {
		if !want[d] {
			t.Errorf("unexpected doc %d in result", d)
		}
	}
}

func TestAnd(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).Term("cat").And().Term("bowl").Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := toSet([]uint32{0})
	if len(got) != 1 || !want[got[0]] {
		t.Fatalf("got %v, want [0]", got)
	}
}

func TestOr(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).Term("snake").Or().Term("dog").Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := toSet([]uint32{1, 2, 3, 4})
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, d := range got {
		if !want[d] {
			t.Errorf("unexpected doc %d", d)
		}
	}
}

func TestNot(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).Term("cat").And().Not().Term("snake").Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// cat docs: {0,2,4}; snake docs: {3,4}; cat AND NOT snake -> {0,2}
	want := toSet([]uint32{0, 2})
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, d := range got {
		if !want[d] {
			t.Errorf("unexpected doc %d", d)
		}
	}
}

func TestGroup(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).
		Group(func(q *Builder) { q.Term("cat").Or().Term("dog") }).
		And().Not().Term("snake").
		Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// (cat OR dog) = {0,1,2,4}; NOT snake = {0,1,2} (5 docs, snake={3,4})
	// intersection -> {0,1,2}
	want := toSet([]uint32{0, 1, 2})
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, d := range got {
		if !want[d] {
			t.Errorf("unexpected doc %d", d)
		}
	}
}

func TestUnknownTermYieldsEmpty(t *testing.T) {
	r := buildFixture(t)
	got, err := NewBuilder(r).Term("fish").Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches for unindexed term, got %v", got)
	}
}

func TestDanglingOperator(t *testing.T) {
	r := buildFixture(t)
	_, err := NewBuilder(r).Term("cat").And().Execute()
	if err != ErrDanglingOperator {
		t.Fatalf("expected ErrDanglingOperator, got %v", err)
	}
}

func TestAllOfAndAnyOf(t *testing.T) {
	r := buildFixture(t)

	got, err := AllOf(r, "cat", "bowl")
	if err != nil {
		t.Fatalf("AllOf: %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("AllOf(cat,bowl) = %v, want [0]", got)
	}

	got, err = AnyOf(r, "snake", "dog")
	if err != nil {
		t.Fatalf("AnyOf: %v", err)
	}
	want := toSet([]uint32{1, 2, 3, 4})
	if len(got) != len(want) {
		t.Fatalf("AnyOf(snake,dog) = %v, want %v", got, want)
	}
}
