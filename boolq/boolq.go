// Package boolq implements a fluent boolean query builder over document sets
// backed by roaring bitmaps, evaluated against an invindex reader's posting
// lists.
//
// ═══════════════════════════════════════════════════════════════════════════════
// QUERY BUILDER: Boolean Queries with Roaring Bitmaps
// ═══════════════════════════════════════════════════════════════════════════════
// Instead of parsing strings like "machine AND learning", build the query
// with a fluent API:
//
//	results, err := NewBuilder(src).
//	    Term("machine").
//	    And().
//	    Term("learning").
//	    Execute()
//
//	results, err := NewBuilder(src).
//	    Group(func(q *Builder) {
//	        q.Term("cat").Or().Term("dog")
//	    }).
//	    And().Not().Term("snake").
//	    Execute()
//
// Each Term() call materializes the posting list's docids into a roaring
// bitmap; And/Or/Not then become O(1)-amortized bitmap operations instead of
// skip-list walks. docids absent from every posting list the query touches
// never enter a bitmap at all, which is what makes this cheap even over a
// sparse corpus.
// ═══════════════════════════════════════════════════════════════════════════════
package boolq

import (
	"errors"

	"github.com/RoaringBitmap/roaring"

	"github.com/wizenheimer/strata/invindex"
)

// ErrDanglingOperator is returned by Execute when a query ends with a
// pending And()/Or() that was never followed by a term or group — e.g.
// "a AND" with nothing after it.
var ErrDanglingOperator = errors.New("boolq: query ends with a pending AND/OR operator")

// PostingsSource is the capability a boolean query needs: decode a term's
// posting list and know the corpus size (for Not's complement). Satisfied
// by invindex.Reader and invindex.CachedReader.
type PostingsSource interface {
	Postings(term string) ([]invindex.Posting, error)
	NumDocs() int
}

type op int

const (
	opNone op = iota
	opAnd
	opOr
)

// Builder accumulates a boolean query against src and, on Execute,
// evaluates it into a roaring bitmap of matching docids. A Builder is not
// safe for concurrent use.
type Builder struct {
	src    PostingsSource
	stack  []*roaring.Bitmap
	ops    []op
	negate bool
	err    error
}

// NewBuilder starts an empty query against src.
func NewBuilder(src PostingsSource) *Builder {
	return &Builder{src: src}
}

// Term adds term to the query, combined with whatever's already on the
// stack via the pending And/Or operator (or pushed bare if the stack is
// empty). A preceding Not() negates this term's bitmap before combining.
func (b *Builder) Term(term string) *Builder {
	if b.err != nil {
		return b
	}
	postings, err := b.src.Postings(term)
	if err != nil {
		b.err = err
		return b
	}
	bm := roaring.New()
	for _, p := range postings {
		bm.Add(uint32(p.DocID))
	}
	return b.pushBitmap(bm)
}

// And queues a logical AND to combine with the next term or group.
func (b *Builder) And() *Builder {
	b.ops = append(b.ops, opAnd)
	return b
}

// Or queues a logical OR to combine with the next term or group.
func (b *Builder) Or() *Builder {
	b.ops = append(b.ops, opOr)
	return b
}

// Not negates the bitmap produced by the very next Term or Group call.
func (b *Builder) Not() *Builder {
	b.negate = true
	return b
}

// Group evaluates fn against a fresh sub-builder sharing src, then combines
// its result with the outer query via the pending And/Or operator, exactly
// as a parenthesized subexpression would.
func (b *Builder) Group(fn func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	sub := NewBuilder(b.src)
	fn(sub)
	bm, err := sub.ExecuteBitmap()
	if err != nil {
		b.err = err
		return b
	}
	return b.pushBitmap(bm)
}

// pushBitmap applies a pending negation, then either seeds the stack (first
// term) or combines bm with the top of the stack using the pending
// And/Or operator (defaulting to AND when none was queued, so bare adjacent
// Term calls conjoin).
func (b *Builder) pushBitmap(bm *roaring.Bitmap) *Builder {
	if b.negate {
		bm = b.complement(bm)
		b.negate = false
	}
	if len(b.stack) == 0 {
		b.stack = append(b.stack, bm)
		return b
	}

	pendingOp := opAnd
	if len(b.ops) > 0 {
		pendingOp = b.ops[len(b.ops)-1]
		b.ops = b.ops[:len(b.ops)-1]
	}

	top := b.stack[len(b.stack)-1]
	var combined *roaring.Bitmap
	switch pendingOp {
	case opOr:
		combined = roaring.Or(top, bm)
	default:
		combined = roaring.And(top, bm)
	}
	b.stack[len(b.stack)-1] = combined
	return b
}

// complement returns the docids in [0, NumDocs) not present in bm.
func (b *Builder) complement(bm *roaring.Bitmap) *roaring.Bitmap {
	universe := roaring.New()
	n := uint64(b.src.NumDocs())
	if n > 0 {
		universe.AddRange(0, n)
	}
	return roaring.AndNot(universe, bm)
}

// Execute evaluates the accumulated query and returns the matching docids,
// sorted ascending (roaring bitmaps iterate in sorted order natively).
func (b *Builder) Execute() ([]uint32, error) {
	bm, err := b.ExecuteBitmap()
	if err != nil {
		return nil, err
	}
	return bm.ToArray(), nil
}

// ExecuteBitmap evaluates the accumulated query and returns the raw roaring
// bitmap of matching docids, for callers (e.g. Group) that want to
// intersect or iterate without converting to a slice first.
func (b *Builder) ExecuteBitmap() (*roaring.Bitmap, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.ops) > 0 {
		return nil, ErrDanglingOperator
	}
	if len(b.stack) == 0 {
		return roaring.New(), nil
	}
	return b.stack[len(b.stack)-1], nil
}

// AllOf is a convenience constructor for a pure conjunction of terms.
func AllOf(src PostingsSource, terms ...string) ([]uint32, error) {
	b := NewBuilder(src)
	for i, t := range terms {
		if i > 0 {
			b.And()
		}
		b.Term(t)
	}
	return b.Execute()
}

// AnyOf is a convenience constructor for a pure disjunction of terms.
func AnyOf(src PostingsSource, terms ...string) ([]uint32, error) {
	b := NewBuilder(src)
	for i, t := range terms {
		if i > 0 {
			b.Or()
		}
		b.Term(t)
	}
	return b.Execute()
}
