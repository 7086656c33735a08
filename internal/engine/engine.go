// Package engine provides the core database engine: the component that
// coordinates the segmented append-only log and the in-memory index into
// put/get/delete/sync/at/iter operations, including crash recovery and
// segment rotation.
//
// The engine owns exactly one active segment (the only one it appends to)
// and a set of idle segments kept open for reads. A commit lock serializes
// every append — whether a single put/delete or a write-batch commit — so
// that the offset recorded for a record always matches where its bytes
// land.
package engine

import (
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ailuruskv/internal/datafile"
	"github.com/iamNilotpal/ailuruskv/internal/index"
	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/errors"
	"github.com/iamNilotpal/ailuruskv/pkg/filesys"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
	"github.com/iamNilotpal/ailuruskv/pkg/seginfo"
)

// ErrEngineClosed is returned by Put, Get, Delete, Sync, Close and
// Batch.Commit once Close has run. Stat, Keys, NewIterator and NewBatch do
// not check for a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine is the main database engine coordinating the log and the index.
type Engine struct {
	opts options.Options
	log  *zap.SugaredLogger

	closed atomic.Bool

	idx *index.Index

	segMu  sync.RWMutex
	active *datafile.File
	idle   map[uint32]*datafile.File

	commitMu sync.Mutex
	seq      atomic.Uint64
}

// Config holds the parameters needed to initialize a new Engine.
type Config struct {
	Options options.Options
	Logger  *zap.SugaredLogger
}

// Stat is a read-only snapshot of the engine's state, useful for
// operational visibility (metrics, health checks) without exposing
// anything beyond what a caller could derive from the public API anyway.
type Stat struct {
	ActiveSegmentID uint32
	IdleSegments    int
	KeyCount        int
	ActiveSegmentSize uint64
}

// Open creates a new engine rooted at opts.DirPath, creating the directory
// if necessary and replaying every existing segment to rebuild the index.
func Open(config *Config) (*Engine, error) {
	if config == nil || config.Logger == nil {
		return nil, errors.NewInvalidDbPathError("", nil)
	}

	opts := config.Options
	log := config.Logger

	if opts.DirPath == "" {
		return nil, errors.NewInvalidDbPathError(opts.DirPath, nil)
	}
	if opts.DataFileSize == 0 {
		return nil, errors.NewDatafileSizeTooSmallError(opts.DataFileSize)
	}
	if opts.IndexType != options.IndexBTree {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidDbPath, "only IndexBTree is implemented",
		).WithField("IndexType").WithRule("supported").WithProvided(opts.IndexType.String())
	}

	log.Infow("opening engine", "dirPath", opts.DirPath, "dataFileSize", opts.DataFileSize)

	if err := filesys.CreateDir(opts.DirPath, 0755, true); err != nil {
		log.Errorw("failed to create data directory", "error", err, "path", opts.DirPath)
		return nil, errors.NewCreateDbDirError(err, opts.DirPath)
	}

	ids, err := seginfo.ListFileIDs(opts.DirPath)
	if err != nil {
		// ListFileIDs already classifies a malformed segment filename as
		// DatafileCorrupted; anything else is a genuine directory-read
		// failure and gets wrapped here.
		if _, ok := errors.AsStorageError(err); ok {
			log.Errorw("failed to discover segment files", "error", err, "path", opts.DirPath)
			return nil, err
		}
		log.Errorw("failed to read database directory", "error", err, "path", opts.DirPath)
		return nil, errors.NewReadDbDirError(err, opts.DirPath)
	}

	idx, err := index.New(&index.Config{Logger: log})
	if err != nil {
		return nil, err
	}

	e := &Engine{opts: opts, log: log, idx: idx, idle: make(map[uint32]*datafile.File)}

	if len(ids) == 0 {
		log.Infow("no existing segments found, starting fresh", "segmentID", uint32(0))
		active, err := datafile.Open(opts.DirPath, 0)
		if err != nil {
			return nil, err
		}
		e.active = active
		return e, nil
	}

	segments := make(map[uint32]*datafile.File, len(ids))
	for _, id := range ids {
		f, err := datafile.Open(opts.DirPath, id)
		if err != nil {
			for _, open := range segments {
				open.Close()
			}
			return nil, err
		}
		segments[id] = f
	}

	activeID := ids[len(ids)-1]
	for id, f := range segments {
		if id == activeID {
			e.active = f
		} else {
			e.idle[id] = f
		}
	}

	if err := e.loadIndex(segments, ids); err != nil {
		for _, f := range segments {
			f.Close()
		}
		return nil, err
	}

	log.Infow(
		"engine opened", "activeSegmentID", activeID,
		"segmentCount", len(ids), "keyCount", e.idx.Len(),
	)
	return e, nil
}

// loadIndex replays every segment in ascending file-id order (and, within a
// segment, ascending offset order) to rebuild the index. This ordering
// guarantees that for any key the last write observed during the scan is
// also the last write that happened in real time.
func (e *Engine) loadIndex(segments map[uint32]*datafile.File, ids []uint32) error {
	type pendingOp struct {
		key     []byte
		loc     record.Location
		deleted bool
	}
	pending := make(map[uint64][]pendingOp)
	var maxSeq uint64

	for _, id := range ids {
		f := segments[id]
		var offset uint64

		for {
			rec, n, err := f.Read(offset)
			if err != nil {
				if se, ok := errors.AsStorageError(err); ok && se.Code() == errors.ErrorCodeEndOfFile {
					break
				}
				e.log.Errorw("segment corrupted during recovery", "error", err, "segmentID", id, "offset", offset)
				return err
			}

			seq, key, err := record.ParseKeyWithSequence(rec.Key)
			if err != nil {
				return err
			}
			if seq > maxSeq {
				maxSeq = seq
			}
			loc := record.Location{FileID: id, Offset: offset}

			switch rec.Type {
			case record.TypeNormal:
				if seq == record.NonTransactionSeqNo {
					e.idx.Put(key, loc)
				} else {
					pending[seq] = append(pending[seq], pendingOp{key: key, loc: loc})
				}
			case record.TypeDeleted:
				if seq == record.NonTransactionSeqNo {
					e.idx.Delete(key)
				} else {
					pending[seq] = append(pending[seq], pendingOp{key: key, deleted: true})
				}
			case record.TypeBatchFinished:
				for _, op := range pending[seq] {
					if op.deleted {
						e.idx.Delete(op.key)
					} else {
						e.idx.Put(op.key, op.loc)
					}
				}
				delete(pending, seq)
			}

			offset += uint64(n)
		}
	}

	if len(pending) > 0 {
		e.log.Infow("dropping unfinished write-batches found during recovery", "count", len(pending))
	}

	e.seq.Store(maxSeq + 1)
	return nil
}

func (e *Engine) segmentFor(fileID uint32) (*datafile.File, error) {
	e.segMu.RLock()
	defer e.segMu.RUnlock()

	if e.active != nil && e.active.ID() == fileID {
		return e.active, nil
	}
	if f, ok := e.idle[fileID]; ok {
		return f, nil
	}
	return nil, errors.NewDatafileNotFoundError(fileID)
}

// appendRecord writes rec to the active segment, rotating to a fresh
// segment first if rec wouldn't fit in the remaining capacity. Rotation
// never happens against an empty active segment, so a record larger than
// DataFileSize is still written — to its own, now-oversized, segment —
// rather than rotating forever.
func (e *Engine) appendRecord(rec *record.Record) (record.Location, error) {
	encoded := record.Encode(rec)
	need := int64(len(encoded))

	e.segMu.Lock()
	defer e.segMu.Unlock()

	if e.active.Offset() > 0 && int64(e.active.Offset())+need > int64(e.opts.DataFileSize) {
		if err := e.active.Sync(); err != nil {
			return record.Location{}, err
		}

		nextID := e.active.ID() + 1
		next, err := datafile.Open(e.opts.DirPath, nextID)
		if err != nil {
			return record.Location{}, err
		}

		e.log.Infow("rotating active segment", "oldSegmentID", e.active.ID(), "newSegmentID", nextID)
		e.idle[e.active.ID()] = e.active
		e.active = next
	}

	loc, err := e.active.Write(encoded)
	if err != nil {
		return record.Location{}, err
	}

	if e.opts.SyncWrites {
		if err := e.active.Sync(); err != nil {
			return record.Location{}, err
		}
	}

	return loc, nil
}

// Put writes key/value, replacing any prior value for key.
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if len(key) == 0 {
		return errors.NewEmptyKeyError("Put")
	}

	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	return e.putLocked(record.NonTransactionSeqNo, key, value)
}

// putLocked appends and indexes a Normal record under seq, assuming the
// commit lock is already held.
func (e *Engine) putLocked(seq uint64, key, value []byte) error {
	encKey := record.EncodeKeyWithSequence(seq, key)
	loc, err := e.appendRecord(&record.Record{Key: encKey, Value: value, Type: record.TypeNormal})
	if err != nil {
		return err
	}
	if !e.idx.Put(key, loc) {
		return errors.NewIndexUpdateError(string(key), "Put")
	}
	return nil
}

// Get returns the current value for key.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if len(key) == 0 {
		return nil, errors.NewEmptyKeyError("Get")
	}

	loc, ok := e.idx.Get(key)
	if !ok {
		return nil, errors.NewKeyNotFoundError(string(key))
	}

	rec, err := e.at(loc)
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// Delete removes key. Unlike a batch delete (which silently no-ops on an
// absent key), a direct Delete requires the key to exist.
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if len(key) == 0 {
		return errors.NewEmptyKeyError("Delete")
	}

	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	return e.deleteLocked(record.NonTransactionSeqNo, key)
}

// deleteLocked appends a tombstone under seq and removes key from the
// index, assuming the commit lock is already held.
func (e *Engine) deleteLocked(seq uint64, key []byte) error {
	if _, ok := e.idx.Get(key); !ok {
		return errors.NewKeyNotFoundError(string(key))
	}

	encKey := record.EncodeKeyWithSequence(seq, key)
	if _, err := e.appendRecord(&record.Record{Key: encKey, Type: record.TypeDeleted}); err != nil {
		return err
	}
	if !e.idx.Delete(key) {
		return errors.NewIndexUpdateError(string(key), "Delete")
	}
	return nil
}

// Sync fsyncs the active segment.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.segMu.RLock()
	defer e.segMu.RUnlock()
	return e.active.Sync()
}

// at resolves a record.Location to its decoded record, for use by Get and
// by the engine iterator.
func (e *Engine) at(loc record.Location) (*record.Record, error) {
	f, err := e.segmentFor(loc.FileID)
	if err != nil {
		return nil, err
	}

	rec, _, err := f.Read(loc.Offset)
	if err != nil {
		if se, ok := errors.AsStorageError(err); ok && se.Code() == errors.ErrorCodeEndOfFile {
			// The index named a location that the log reports as past its
			// end — a broken invariant, not an ordinary miss.
			return nil, errors.NewInternalError(err, "index location decodes as end-of-file")
		}
		return nil, err
	}

	if _, key, err := record.ParseKeyWithSequence(rec.Key); err == nil {
		rec.Key = key
	}

	if rec.Type == record.TypeDeleted {
		// The index should never hold a tombstone's location; this is a
		// defensive guard against that invariant being violated.
		return nil, errors.NewKeyNotFoundError(string(rec.Key))
	}

	return rec, nil
}

// Stat returns a snapshot of the engine's current state.
func (e *Engine) Stat() Stat {
	e.segMu.RLock()
	defer e.segMu.RUnlock()

	return Stat{
		ActiveSegmentID:   e.active.ID(),
		IdleSegments:      len(e.idle),
		KeyCount:          e.idx.Len(),
		ActiveSegmentSize: e.active.Offset(),
	}
}

// Keys returns every key matched by opts, without reading values — a thin
// composition of Iterator that skips the at() call for callers that only
// need existence/ordering information.
func (e *Engine) Keys(opts options.IteratorOptions) [][]byte {
	it := e.idx.Iterator(opts)

	keys := make([][]byte, 0, it.Len())
	for it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
	}
	return keys
}

// Close shuts down the engine, syncing and closing every open segment.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.log.Infow("closing engine")

	e.segMu.Lock()
	defer e.segMu.Unlock()

	var firstErr error
	if err := e.active.Sync(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.active.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	for _, f := range e.idle {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := e.idx.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
