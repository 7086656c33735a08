// Package fio is the lowest layer of the storage stack: a thin, concurrency-safe
// wrapper around a single *os.File giving positional reads, positional
// writes, and fsync. Every segment in internal/datafile opens exactly one
// of these.
package fio

import (
	"io"
	"os"
	"sync"

	"github.com/iamNilotpal/ailuruskv/pkg/errors"
)

// IO is the interface a segment needs from its backing file. Defined as an
// interface (rather than exposing *FileIO directly) so tests can swap in a
// fake that injects read/write failures without touching the filesystem.
type IO interface {
	// ReadAt reads len(p) bytes starting at offset, the same contract as
	// io.ReaderAt: it may return fewer bytes than requested along with
	// io.EOF when the read reaches the end of the file.
	ReadAt(p []byte, offset int64) (int, error)

	// WriteAt writes p at the given byte offset and returns the number of
	// bytes written. The caller (internal/datafile) supplies the offset
	// rather than relying on O_APPEND, so the append position it records
	// for a record is exactly where Write lands even under concurrent
	// access to idle, read-only segments.
	WriteAt(p []byte, offset int64) (int, error)

	// Sync flushes the file's in-kernel buffers to stable storage.
	Sync() error

	// Size reports the file's current length in bytes.
	Size() (int64, error)

	// Close releases the underlying file descriptor.
	Close() error
}

// FileIO is the only IO implementation: a single *os.File guarded by a
// RWMutex so concurrent readers don't block each other while a writer holds
// exclusive access during an append.
type FileIO struct {
	mu   sync.RWMutex
	file *os.File
	path string
}

var _ IO = (*FileIO)(nil)

// Open opens (creating if necessary) the file at path for reading and
// writing. No O_APPEND: the engine tracks the append offset itself and
// writes positionally, matching the teacher's storage.go, which explicitly
// seeks to end-of-file after open rather than trusting kernel append
// semantics for offset bookkeeping.
func Open(path string) (*FileIO, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.NewFileOpenError(err, path, "")
	}
	return &FileIO{file: f, path: path}, nil
}

// ReadAt satisfies io.ReaderAt so *FileIO can be handed directly to
// internal/record's decoder.
func (f *FileIO) ReadAt(p []byte, offset int64) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, err := f.file.ReadAt(p, offset)
	if err != nil && err != io.EOF {
		return n, errors.NewFileReadError(err, f.path, "", uint64(offset))
	}
	return n, err
}

// WriteAt writes p at offset. The engine still serializes appends to a
// given segment through its own commit lock, so concurrent calls never
// target overlapping ranges; the lock here only keeps a write from
// interleaving with a concurrent Size/Sync/Close.
func (f *FileIO) WriteAt(p []byte, offset int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.file.WriteAt(p, offset)
	if err != nil {
		return n, errors.NewFileWriteError(err, f.path, "")
	}
	return n, nil
}

// Sync fsyncs the file.
func (f *FileIO) Sync() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.file.Sync(); err != nil {
		return errors.NewFileSyncError(err, f.path, "")
	}
	return nil
}

// Size reports the current file length via stat, not the writer's own
// bookkeeping — used once at open to seed a recovered segment's offset.
func (f *FileIO) Size() (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info, err := f.file.Stat()
	if err != nil {
		return 0, errors.NewFileReadError(err, f.path, "", 0)
	}
	return info.Size(), nil
}

// Close closes the underlying descriptor.
func (f *FileIO) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
