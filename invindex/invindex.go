// Package invindex implements a positional inverted index: a builder that
// accumulates per-term, per-document position lists, and a read-only reader
// that decodes the finalized varint/delta-encoded postings blobs.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS A POSITIONAL INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// For every distinct token in the corpus, we keep an ordered list of
// (docid, positions) entries: which documents contain the token, and at
// which token-offsets within each document.
//
//	Doc 1: "the quick brown fox"
//	Doc 2: "the lazy dog"
//	Doc 3: "quick brown dogs"
//
//	"quick" -> [(1, [1]), (3, [0])]
//	"brown" -> [(1, [2]), (3, [1])]
//	"fox"   -> [(1, [3])]
//
// Positions make phrase search possible ("brown fox" needs adjacent
// positions) and BM25 scoring possible (term frequency is len(positions)).
//
// ON-DISK ENCODING:
// -----------------
// Each term's posting list is a single byte blob: for every (docid,
// positions) entry, in ascending docid order,
//
//	varint(docid delta from previous entry, first entry absolute)
//	varint(len(positions))
//	varint(position delta from previous position, first position absolute)
//	  ... repeated len(positions) times, restarting from zero per entry
//
// Both docid deltas and position deltas are strictly positive by
// construction (no duplicate docids per term, no duplicate positions within
// a document).
// ═══════════════════════════════════════════════════════════════════════════════
package invindex

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/wizenheimer/strata/varint"
)

// ErrCorruptPostings is returned when a postings blob fails to decode: a
// varint decode error, or a final offset that doesn't land exactly on the
// end of the blob. There is no per-term recovery from this; it indicates the
// entire loaded index is untrustworthy.
var ErrCorruptPostings = errors.New("invindex: corrupt postings blob")

// DocID identifies a document within the corpus.
type DocID uint32

// Posting is one (document, positions) entry of a decoded posting list.
// Positions are the strictly ascending token-offsets at which the term
// occurs within that document.
type Posting struct {
	DocID     DocID
	Positions []uint32
}

// TermFrequency returns len(Positions), the number of times the term occurs
// in this document.
func (p Posting) TermFrequency() int { return len(p.Positions) }

// ═══════════════════════════════════════════════════════════════════════════════
// BUILDER
// ═══════════════════════════════════════════════════════════════════════════════

// Builder accumulates (token, docid, position) triples and finalizes them
// into an encoded Reader. A Builder is not safe for concurrent use and must
// be owned by a single goroutine until Finalize.
//
// Documents must be added in ascending DocID order; AddDoc checks this and
// panics on a violation rather than silently emitting a negative delta.
type Builder struct {
	// term -> docid -> positions, built incrementally as tokens arrive.
	postings map[string]map[DocID][]uint32
	lastDoc  DocID
	hasDoc   bool
	maxDoc   DocID
	numDocs  int
}

// NewBuilder creates an empty index builder.
func NewBuilder() *Builder {
	return &Builder{postings: make(map[string]map[DocID][]uint32)}
}

// AddDoc records a single (token, position) occurrence for the given
// document. Callers (typically a tokenizer loop) call this once per token;
// position is the token's 0-based offset within the document.
//
// AddDoc panics if called with a docid smaller than one already seen, since
// that would violate the ascending-docid invariant the encoded postings
// format depends on.
func (b *Builder) AddDoc(docid DocID, token string, position uint32) {
	if b.hasDoc && docid < b.lastDoc {
		panic("invindex: AddDoc called with non-ascending docid")
	}
	if !b.hasDoc || docid != b.lastDoc {
		b.numDocs++
	}
	b.hasDoc = true
	b.lastDoc = docid
	if docid > b.maxDoc || b.numDocs == 1 {
		b.maxDoc = docid
	}

	byDoc, ok := b.postings[token]
	if !ok {
		byDoc = make(map[DocID][]uint32)
		b.postings[token] = byDoc
	}
	byDoc[docid] = append(byDoc[docid], position)
}

// IndexTokens is a convenience wrapper that adds every (token, position)
// pair of a pre-tokenized document in one call.
func (b *Builder) IndexTokens(docid DocID, tokens []Token) {
	slog.Info("indexing document", slog.Int("docID", int(docid)), slog.Int("tokens", len(tokens)))
	for _, tok := range tokens {
		b.AddDoc(docid, tok.Term, uint32(tok.Position))
	}
}

// Token is a single (term, position) pair as produced by a tokenizer.
type Token struct {
	Term     string
	Position int
}

// Finalize sorts each term's docid entries and position lists, encodes them
// into the varint/delta blob format described above, and returns a read-only
// Reader. The Builder should not be used after Finalize.
func (b *Builder) Finalize() *Reader {
	dict := make(map[string][]byte, len(b.postings))
	for term, byDoc := range b.postings {
		docids := make([]DocID, 0, len(byDoc))
		for d := range byDoc {
			docids = append(docids, d)
		}
		sort.Slice(docids, func(i, j int) bool { return docids[i] < docids[j] })

		var buf []byte
		var lastDoc uint64
		for i, d := range docids {
			delta := uint64(d)
			if i > 0 {
				delta = uint64(d) - lastDoc
			}
			lastDoc = uint64(d)
			buf = varint.Encode(buf, delta)

			positions := byDoc[d]
			sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
			buf = varint.Encode(buf, uint64(len(positions)))

			var lastPos uint64
			for j, p := range positions {
				delta := uint64(p)
				if j > 0 {
					delta = uint64(p) - lastPos
				}
				lastPos = uint64(p)
				buf = varint.Encode(buf, delta)
			}
		}
		dict[term] = buf
	}

	return &Reader{dict: dict, numDocs: uint32(b.maxDoc) + boolToUint32(len(b.postings) > 0 || b.hasDoc)}
}

func boolToUint32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// ═══════════════════════════════════════════════════════════════════════════════
// READER
// ═══════════════════════════════════════════════════════════════════════════════

// Reader answers postings lookups against the encoded dictionary built by a
// Builder (or loaded from disk by an external collaborator — see
// corpusio). Readers are immutable and safe for concurrent use by multiple
// goroutines once constructed.
type Reader struct {
	dict    map[string][]byte
	numDocs uint32

	docLens  map[DocID]uint32
	lensErr  error
	lensOnce sync.Once
}

// NewReader wraps an already-encoded term->blob dictionary, the form a
// deserialized on-disk index arrives in. numDocs is the greatest docid
// encountered plus one; pass 0 for an empty corpus.
func NewReader(dict map[string][]byte, numDocs uint32) *Reader {
	return &Reader{dict: dict, numDocs: numDocs}
}

// NumDocs returns the greatest DocID encountered during build plus one, or
// zero for an empty index. This is a bound on docids, not a document count:
// callers that need an exact count (e.g. over a corpus with gaps) must
// derive it themselves.
func (r *Reader) NumDocs() int { return int(r.numDocs) }

// Terms enumerates the dictionary in ascending lexicographic order.
func (r *Reader) Terms() []string {
	terms := make([]string, 0, len(r.dict))
	for t := range r.dict {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Postings decodes and returns the posting list for term, ascending by
// docid with ascending positions within each entry. A term absent from the
// dictionary yields an empty (nil) slice — not an error.
//
// Returns ErrCorruptPostings if the blob fails to decode; a corrupted blob
// is a fatal, unrecoverable condition for that load, so there is no
// per-term recovery or partial result.
func (r *Reader) Postings(term string) ([]Posting, error) {
	blob, ok := r.dict[term]
	if !ok {
		return nil, nil
	}
	return decodePostings(blob)
}

func decodePostings(blob []byte) ([]Posting, error) {
	var result []Posting
	var lastDoc uint64
	i := 0
	for i < len(blob) {
		delta, next, err := varint.Decode(blob, i)
		if err != nil {
			return nil, ErrCorruptPostings
		}
		i = next
		lastDoc += delta
		docid := DocID(lastDoc)

		freq, next, err := varint.Decode(blob, i)
		if err != nil {
			return nil, ErrCorruptPostings
		}
		i = next

		positions := make([]uint32, freq)
		var lastPos uint64
		for k := range positions {
			d, next, err := varint.Decode(blob, i)
			if err != nil {
				return nil, ErrCorruptPostings
			}
			i = next
			lastPos += d
			positions[k] = uint32(lastPos)
		}
		result = append(result, Posting{DocID: docid, Positions: positions})
	}
	if i != len(blob) {
		return nil, ErrCorruptPostings
	}
	return result, nil
}

// DocFrequency returns the number of documents containing term, without
// materializing full positions. A missing term has document frequency zero.
func (r *Reader) DocFrequency(term string) (int, error) {
	postings, err := r.Postings(term)
	if err != nil {
		return 0, err
	}
	return len(postings), nil
}

// DocLens returns the length (total token occurrences, i.e. sum of tf over
// all terms) of every document that appears in at least one posting list.
// This is the single canonical doc_len derivation every other component
// that needs document lengths (bm25, the CLI) goes through — computed once,
// on the first call, and cached, mirroring
// the original's compute_doc_lens with the CLI's inlined duplicate removed.
func (r *Reader) DocLens() (map[DocID]uint32, error) {
	r.lensOnce.Do(func() {
		lens := make(map[DocID]uint32)
		for term := range r.dict {
			postings, err := r.Postings(term)
			if err != nil {
				r.lensErr = err
				return
			}
			for _, p := range postings {
				lens[p.DocID] += uint32(len(p.Positions))
			}
		}
		r.docLens = lens
	})
	if r.lensErr != nil {
		return nil, r.lensErr
	}
	return r.docLens, nil
}

// DocLen returns a single document's length, or 0 if the document has no
// indexed terms.
func (r *Reader) DocLen(doc DocID) (uint32, error) {
	lens, err := r.DocLens()
	if err != nil {
		return 0, err
	}
	return lens[doc], nil
}

// Dict exposes the raw encoded dictionary, the form persisted to disk by
// corpusio and by the CLI's build-inv command.
func (r *Reader) Dict() map[string][]byte { return r.dict }
