package invindex

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedReader wraps a Reader with an LRU cache of decoded posting lists, for
// corpora where a handful of terms (stopword-adjacent but not filtered, or
// hot query terms) are looked up repeatedly. Decoding is cheap per call but
// not free, and a CLI issuing many queries against the same on-disk
// dictionary benefits from skipping repeat decodes entirely.
type CachedReader struct {
	r     *Reader
	cache *lru.Cache[string, []Posting]
}

// NewCachedReader wraps r with an LRU cache holding up to capacity decoded
// term postings. A non-positive capacity is raised to 1, so a single-entry
// cache is the smallest possible; caching is never switched off.
func NewCachedReader(r *Reader, capacity int) *CachedReader {
	if capacity <= 0 {
		capacity = 1
	}
	cache, err := lru.New[string, []Posting](capacity)
	if err != nil {
		// Only returned by the library for a non-positive size, which we've
		// just guarded against above.
		panic(err)
	}
	return &CachedReader{r: r, cache: cache}
}

// Postings returns term's decoded posting list, serving from cache when
// possible.
func (c *CachedReader) Postings(term string) ([]Posting, error) {
	if cached, ok := c.cache.Get(term); ok {
		return cached, nil
	}
	postings, err := c.r.Postings(term)
	if err != nil {
		return nil, err
	}
	c.cache.Add(term, postings)
	return postings, nil
}

// Terms, NumDocs, DocLen and DocFrequency pass straight through to the
// underlying Reader; only Postings benefits from caching.
func (c *CachedReader) Terms() []string { return c.r.Terms() }

func (c *CachedReader) NumDocs() int { return c.r.NumDocs() }

func (c *CachedReader) DocLen(doc DocID) (uint32, error) { return c.r.DocLen(doc) }

func (c *CachedReader) DocFrequency(term string) (int, error) { return c.r.DocFrequency(term) }

// Purge evicts every cached entry, logging how many were dropped. Useful
// after the underlying Reader is swapped out for a freshly rebuilt index.
func (c *CachedReader) Purge() {
	n := c.cache.Len()
	c.cache.Purge()
	slog.Info("invindex: purged postings cache", slog.Int("entries", n))
}
