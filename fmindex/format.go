// On-disk "FMX2" serialization: a built Index persists as magic + header +
// RLE-coded BWT + sparse sample flags + delta-varint sample positions, and
// loads back into an identical query-capable Index without ever touching
// the original text again (Occ vectors are rebuilt from the decoded BWT).
package fmindex

import (
	"encoding/binary"
	"io"

	"github.com/wizenheimer/strata/sparserank"
	"github.com/wizenheimer/strata/varint"
)

var magic = [4]byte{'F', 'M', 'X', '2'}

// Save writes idx to w in the FMX2 format:
//
//	magic[4]
//	n uint64, saSample uint64
//	C[256]uint64
//	rleLen uint64, rle bytes ((symbol byte, varint runLen) pairs)
//	sample-flags block (see writeSparseFlags)
//	sampPosLen uint64, delta-varint-encoded sample positions
func (idx *Index) Save(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeU64(w, uint64(idx.n)); err != nil {
		return err
	}
	if err := writeU64(w, uint64(idx.saSample)); err != nil {
		return err
	}
	for _, v := range idx.c {
		if err := writeU64(w, v); err != nil {
			return err
		}
	}

	rle := encodeBWTRLE(idx.bwt)
	if err := writeU64(w, uint64(len(rle))); err != nil {
		return err
	}
	if _, err := w.Write(rle); err != nil {
		return err
	}

	if err := writeSparseFlags(w, idx.sampFlags); err != nil {
		return err
	}

	var buf []byte
	var acc uint64
	for i, p := range idx.sampPos {
		v := uint64(p)
		delta := v
		if i > 0 {
			delta = v - acc
		}
		acc = v
		buf = varint.Encode(buf, delta)
	}
	if err := writeU64(w, uint64(len(buf))); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// Load reconstructs an Index previously written by Save. The BWT is decoded
// from its RLE form and the per-symbol Occ bitvectors are rebuilt from it;
// nothing about the original text is required.
func Load(r io.Reader) (*Index, error) {
	var gotMagic [4]byte
	if err := readFull(r, gotMagic[:]); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, ErrBadMagic
	}

	n, err := readU64(r)
	if err != nil {
		return nil, err
	}
	saSample, err := readU64(r)
	if err != nil {
		return nil, err
	}

	var c [256]uint64
	for i := range c {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		c[i] = v
	}

	rleLen, err := readU64(r)
	if err != nil {
		return nil, err
	}
	rle := make([]byte, rleLen)
	if err := readFull(r, rle); err != nil {
		return nil, err
	}
	bwtBytes, err := decodeBWTRLE(rle, int(n))
	if err != nil {
		return nil, err
	}
	occ := buildOcc(bwtBytes)

	sampFlags, err := readSparseFlags(r)
	if err != nil {
		return nil, err
	}

	posLen, err := readU64(r)
	if err != nil {
		return nil, err
	}
	posBuf := make([]byte, posLen)
	if err := readFull(r, posBuf); err != nil {
		return nil, err
	}
	var sampPos []int
	var acc uint64
	off := 0
	for off < len(posBuf) {
		delta, next, derr := varint.Decode(posBuf, off)
		if derr != nil {
			return nil, derr
		}
		off = next
		acc += delta
		sampPos = append(sampPos, int(acc))
	}

	saSampleInt := int(saSample)
	if saSampleInt < 1 {
		saSampleInt = 1
	}

	return &Index{
		c:         c,
		occ:       occ,
		bwt:       bwtBytes,
		n:         int(n),
		saSample:  saSampleInt,
		sampFlags: sampFlags,
		sampPos:   sampPos,
	}, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// RLE-CODED BWT
// ═══════════════════════════════════════════════════════════════════════════════
// The BWT of typical text is dominated by long runs of a repeated byte
// (that's the whole point of the transform); storing it as (symbol,
// run-length) pairs instead of raw bytes routinely shrinks it several-fold.

func encodeBWTRLE(bwtBytes []byte) []byte {
	if len(bwtBytes) == 0 {
		return nil
	}
	var out []byte
	cur := bwtBytes[0]
	var run uint64 = 1
	for _, ch := range bwtBytes[1:] {
		if ch == cur {
			run++
			continue
		}
		out = append(out, cur)
		out = varint.Encode(out, run)
		cur = ch
		run = 1
	}
	out = append(out, cur)
	out = varint.Encode(out, run)
	return out
}

func decodeBWTRLE(buf []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	i := 0
	for i < len(buf) {
		sym := buf[i]
		i++
		run, next, err := varint.Decode(buf, i)
		if err != nil {
			return nil, err
		}
		i = next
		for k := uint64(0); k < run; k++ {
			out = append(out, sym)
		}
	}
	if len(out) != n {
		return nil, ErrBWTLengthMismatch
	}
	return out, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// SPARSE FLAGS BLOCK
// ═══════════════════════════════════════════════════════════════════════════════
// nbits uint64, nSuper uint64, superCounts[nSuper]uint32, nOnes uint64, ones[nOnes]uint32

func writeSparseFlags(w io.Writer, f *sparserank.Flags) error {
	if err := writeU64(w, uint64(f.Len())); err != nil {
		return err
	}
	superCounts := f.SuperCounts()
	if err := writeU64(w, uint64(len(superCounts))); err != nil {
		return err
	}
	for _, v := range superCounts {
		if err := writeU32(w, v); err != nil {
			return err
		}
	}
	ones := f.Ones()
	if err := writeU64(w, uint64(len(ones))); err != nil {
		return err
	}
	for _, v := range ones {
		if err := writeU32(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readSparseFlags(r io.Reader) (*sparserank.Flags, error) {
	nbits, err := readU64(r)
	if err != nil {
		return nil, err
	}
	nSuper, err := readU64(r)
	if err != nil {
		return nil, err
	}
	superCounts := make([]uint32, nSuper)
	for i := range superCounts {
		v, err := readU32(r)
		if err != nil {
			return nil, err
		}
		superCounts[i] = v
	}
	nOnes, err := readU64(r)
	if err != nil {
		return nil, err
	}
	ones := make([]uint32, nOnes)
	for i := range ones {
		v, err := readU32(r)
		if err != nil {
			return nil, err
		}
		ones[i] = v
	}
	return sparserank.FromParts(int(nbits), superCounts, ones), nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// LITTLE-ENDIAN PRIMITIVES
// ═══════════════════════════════════════════════════════════════════════════════

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
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

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return ErrShortRead
	}
	return err
}
