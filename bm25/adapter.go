package bm25

import "github.com/wizenheimer/strata/invindex"

// invindexSource adapts an invindex.Reader (or anything shaped like one) to
// the Source interface this package scores against.
type invindexSource struct {
	r postingsDocLenNumDocs
}

// postingsDocLenNumDocs is the subset of invindex.Reader's API the adapter
// needs; invindex.Reader and invindex.CachedReader both satisfy it.
type postingsDocLenNumDocs interface {
	Postings(term string) ([]invindex.Posting, error)
	DocLen(doc invindex.DocID) (uint32, error)
	NumDocs() int
}

// FromInvIndex wraps an invindex reader as a bm25.Source.
func FromInvIndex(r postingsDocLenNumDocs) Source {
	return invindexSource{r: r}
}

func (s invindexSource) Postings(term string) ([]Posting, error) {
	raw, err := s.r.Postings(term)
	if err != nil {
		return nil, err
	}
	out := make([]Posting, len(raw))
	for i, p := range raw {
		out[i] = Posting{DocID: uint32(p.DocID), TF: p.TermFrequency()}
	}
	return out, nil
}

func (s invindexSource) DocLen(doc uint32) (uint32, error) {
	return s.r.DocLen(invindex.DocID(doc))
}

func (s invindexSource) NumDocs() int { return s.r.NumDocs() }
