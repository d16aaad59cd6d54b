package corpusio

import (
	"bytes"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Compress frames data as a zstd stream, for the inverted dictionary's
// on-disk form (length-prefixed term/blob pairs that compress well thanks
// to repeated varint patterns across similarly-shaped postings).
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(compressed []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Fingerprint returns a 64-bit content hash of data, stamped into on-disk
// headers so a loader can detect a dictionary payload that was corrupted or
// truncated after it was written.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// NewBuildID returns a fresh random identifier to stamp into a freshly built
// index's header, letting two files built from the same corpus but at
// different times be told apart.
func NewBuildID() string {
	return uuid.NewString()
}
