// Package corpusio provides the on-disk plumbing the CLI and index readers
// share: memory-mapped read-only access to large index files, zstd framing
// for the inverted dictionary, content fingerprints for detecting a
// corrupted dictionary payload, and build-id stamping.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY MEMORY-MAP THE INDEX FILES?
// ═══════════════════════════════════════════════════════════════════════════════
// An FM-index or a large inverted dictionary can run well past what's
// comfortable to read into a single []byte up front — and a read-only query
// process doesn't need to: mmap hands the kernel's page cache directly to
// the process's address space, so pages are faulted in on first touch
// instead of copied wholesale at open time. Every query path in fmindex and
// invindex works against a plain []byte, so a mapped file slots in wherever
// an in-memory byte slice would.
// ═══════════════════════════════════════════════════════════════════════════════
package corpusio

import (
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only memory-mapped view of a file on disk. Close
// unmaps the region and releases the file handle; the returned Bytes()
// slice must not be used after Close.
type MappedFile struct {
	data mmap.MMap
	file *os.File
}

// OpenMapped memory-maps path for read-only access.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		// mmap.Map refuses to map a zero-length file; an empty index file
		// is a valid (if useless) corpus, so hand back an empty view
		// instead of failing the open.
		f.Close()
		return &MappedFile{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	slog.Debug("corpusio: mapped file", slog.String("path", path), slog.Int64("bytes", info.Size()))
	return &MappedFile{data: m, file: f}, nil
}

// Bytes returns the mapped region. Valid until Close.
func (m *MappedFile) Bytes() []byte {
	if m.data == nil {
		return nil
	}
	return []byte(m.data)
}

// Close unmaps the region and closes the underlying file.
func (m *MappedFile) Close() error {
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			return err
		}
	}
	if m.file != nil {
		return m.file.Close()
	}
	return nil
}
