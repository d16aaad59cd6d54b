package corpusio

import (
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/wizenheimer/strata/varint"
)

// ErrBadDictMagic is returned by LoadDict when the file doesn't start with
// the expected header.
var ErrBadDictMagic = errors.New("corpusio: bad dictionary file magic")

// ErrFingerprintMismatch is returned by LoadDict when the stored content
// fingerprint doesn't match the decompressed payload, indicating a
// truncated write or bit-rot rather than a format error.
var ErrFingerprintMismatch = errors.New("corpusio: dictionary fingerprint mismatch")

var dictMagic = [4]byte{'C', 'D', 'I', 'C'}

// DictHeader carries the metadata stamped alongside a serialized term
// dictionary: a fresh build id (so two builds of the same corpus can be
// told apart) and the corpus's document count.
type DictHeader struct {
	BuildID string
	NumDocs uint32
}

// SaveDict writes an invindex term->postings-blob dictionary to w as:
//
//	magic[4]
//	buildID: u64 length + bytes
//	numDocs uint64
//	fingerprint uint64 (xxhash64 of the uncompressed payload)
//	payloadLen uint64, zstd-compressed payload
//
// The payload itself is term count + (varint(len term), term bytes,
// varint(len blob), blob bytes) per dictionary entry, in ascending term
// order so the file is byte-stable across runs over the same corpus.
func SaveDict(w io.Writer, dict map[string][]byte, header DictHeader) error {
	terms := make([]string, 0, len(dict))
	for t := range dict {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	var payload []byte
	payload = varint.Encode(payload, uint64(len(terms)))
	for _, term := range terms {
		blob := dict[term]
		payload = varint.Encode(payload, uint64(len(term)))
		payload = append(payload, term...)
		payload = varint.Encode(payload, uint64(len(blob)))
		payload = append(payload, blob...)
	}

	fp := Fingerprint(payload)
	compressed, err := Compress(payload)
	if err != nil {
		return err
	}

	if _, err := w.Write(dictMagic[:]); err != nil {
		return err
	}
	idBytes := []byte(header.BuildID)
	if err := writeVarintBytes(w, idBytes); err != nil {
		return err
	}
	if err := writeU64(w, uint64(header.NumDocs)); err != nil {
		return err
	}
	if err := writeU64(w, fp); err != nil {
		return err
	}
	if err := writeU64(w, uint64(len(compressed))); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// LoadDict reverses SaveDict, validating the stored fingerprint against the
// decompressed payload before returning the reconstructed dictionary.
func LoadDict(r io.Reader) (map[string][]byte, DictHeader, error) {
	var gotMagic [4]byte
	if err := readFull(r, gotMagic[:]); err != nil {
		return nil, DictHeader{}, err
	}
	if gotMagic != dictMagic {
		return nil, DictHeader{}, ErrBadDictMagic
	}

	idBytes, err := readVarintBytes(r)
	if err != nil {
		return nil, DictHeader{}, err
	}
	numDocs, err := readU64(r)
	if err != nil {
		return nil, DictHeader{}, err
	}
	fp, err := readU64(r)
	if err != nil {
		return nil, DictHeader{}, err
	}
	clen, err := readU64(r)
	if err != nil {
		return nil, DictHeader{}, err
	}
	compressed := make([]byte, clen)
	if err := readFull(r, compressed); err != nil {
		return nil, DictHeader{}, err
	}

	payload, err := Decompress(compressed)
	if err != nil {
		return nil, DictHeader{}, err
	}
	if Fingerprint(payload) != fp {
		return nil, DictHeader{}, ErrFingerprintMismatch
	}

	dict := make(map[string][]byte)
	off := 0
	numTerms, off, err := varint.Decode(payload, off)
	if err != nil {
		return nil, DictHeader{}, err
	}
	for i := uint64(0); i < numTerms; i++ {
		termLen, next, derr := varint.Decode(payload, off)
		if derr != nil {
			return nil, DictHeader{}, derr
		}
		off = next
		term := string(payload[off : off+int(termLen)])
		off += int(termLen)

		blobLen, next, derr := varint.Decode(payload, off)
		if derr != nil {
			return nil, DictHeader{}, derr
		}
		off = next
		blob := append([]byte(nil), payload[off:off+int(blobLen)]...)
		off += int(blobLen)

		dict[term] = blob
	}

	return dict, DictHeader{BuildID: string(idBytes), NumDocs: uint32(numDocs)}, nil
}

func writeVarintBytes(w io.Writer, b []byte) error {
	if err := writeU64(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readVarintBytes(r io.Reader) ([]byte, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
