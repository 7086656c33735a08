// Package datafile implements a single append-only segment: a file-id, a
// running append-offset, and the fio.IO handle backing it.
package datafile

import (
	"path/filepath"
	"sync/atomic"

	"github.com/iamNilotpal/ailuruskv/internal/fio"
	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/seginfo"
)

// File is one segment on disk.
type File struct {
	id     uint32
	offset atomic.Uint64
	io     fio.IO
}

// Open opens (or creates) the segment file with the given id inside dir and
// seeds its append-offset from the file's actual length — the only way a
// reopened segment picks up where a previous process left off.
func Open(dir string, id uint32) (*File, error) {
	path := filepath.Join(dir, seginfo.GenerateName(id))
	h, err := fio.Open(path)
	if err != nil {
		return nil, err
	}

	size, err := h.Size()
	if err != nil {
		h.Close()
		return nil, err
	}

	f := &File{id: id, io: h}
	f.offset.Store(uint64(size))
	return f, nil
}

// ID returns the segment's file-id.
func (f *File) ID() uint32 { return f.id }

// Offset returns the current append-offset: the byte position the next
// Write will land at.
func (f *File) Offset() uint64 { return f.offset.Load() }

// Write appends the encoded record bytes b and returns the record.Location
// it was written at. Callers serialize calls to Write on a given *File
// (the engine's commit lock does this for the active segment) so the
// offset returned here is accurate.
func (f *File) Write(b []byte) (record.Location, error) {
	offset := f.offset.Load()
	loc := record.Location{FileID: f.id, Offset: offset}

	n, err := f.io.WriteAt(b, int64(offset))
	if err != nil {
		return record.Location{}, err
	}

	f.offset.Add(uint64(n))
	return loc, nil
}

// Read decodes the record starting at offset.
func (f *File) Read(offset uint64) (*record.Record, int64, error) {
	return record.Decode(f.io, f.id, int64(offset))
}

// Sync fsyncs the segment.
func (f *File) Sync() error { return f.io.Sync() }

// Close releases the segment's file descriptor.
func (f *File) Close() error { return f.io.Close() }
