package engine

import (
	"sync"

	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/errors"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

// pendingWrite is one staged mutation in a Batch, keyed by its caller key
// in the buffer.
type pendingWrite struct {
	value   []byte
	deleted bool
}

// Batch buffers put/delete calls and applies them atomically on Commit: all
// of a batch's records become visible in the index at once, or (on a crash
// before Commit finishes) none of them do.
type Batch struct {
	mu      sync.Mutex
	engine  *Engine
	opts    options.WriteBatchOptions
	pending map[string]pendingWrite
}

// NewBatch returns an empty write-batch bound to e.
func (e *Engine) NewBatch(opts options.WriteBatchOptions) *Batch {
	return &Batch{engine: e, opts: opts, pending: make(map[string]pendingWrite)}
}

// Put stages a key/value write. It does not touch the log or the index
// until Commit.
func (b *Batch) Put(key, value []byte) error {
	if len(key) == 0 {
		return errors.NewEmptyKeyError("Batch.Put")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[string(key)] = pendingWrite{value: append([]byte(nil), value...)}
	return nil
}

// Delete stages a tombstone. Unlike Engine.Delete, staging a delete for a
// key that is absent from both the index and this batch's own pending set
// is a silent no-op rather than an error — there is nothing to undo.
func (b *Batch) Delete(key []byte) error {
	if len(key) == 0 {
		return errors.NewEmptyKeyError("Batch.Delete")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, staged := b.pending[string(key)]; !staged {
		if _, indexed := b.engine.idx.Get(key); !indexed {
			return nil
		}
	}

	b.pending[string(key)] = pendingWrite{deleted: true}
	return nil
}

// Commit applies every staged write atomically: each record is appended
// tagged with one sequence number freshly allocated for this commit and
// shared by all of its records, followed by one TypeBatchFinished
// sentinel carrying the same sequence number. Recovery only folds a
// batch's records into the index once it observes that sentinel, so a
// crash between the last staged record and the sentinel leaves the whole
// batch un-applied.
func (b *Batch) Commit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.engine.closed.Load() {
		return ErrEngineClosed
	}
	if len(b.pending) == 0 {
		return nil
	}
	if uint32(len(b.pending)) > b.opts.BatchSize {
		return errors.NewBatchSizeExceededError(len(b.pending), b.opts.BatchSize)
	}

	e := b.engine
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	seq := e.seq.Add(1)

	type applied struct {
		key     []byte
		loc     record.Location
		deleted bool
	}
	results := make([]applied, 0, len(b.pending))

	for k, w := range b.pending {
		key := []byte(k)
		encKey := record.EncodeKeyWithSequence(seq, key)

		if w.deleted {
			if _, err := e.appendRecord(&record.Record{Key: encKey, Type: record.TypeDeleted}); err != nil {
				return err
			}
			results = append(results, applied{key: key, deleted: true})
			continue
		}

		loc, err := e.appendRecord(&record.Record{Key: encKey, Value: w.value, Type: record.TypeNormal})
		if err != nil {
			return err
		}
		results = append(results, applied{key: key, loc: loc})
	}

	sentinelKey := record.EncodeKeyWithSequence(seq, nil)
	if _, err := e.appendRecord(&record.Record{Key: sentinelKey, Type: record.TypeBatchFinished}); err != nil {
		return err
	}

	if b.opts.SyncOnCommit {
		if err := e.Sync(); err != nil {
			return err
		}
	}

	for _, r := range results {
		var ok bool
		if r.deleted {
			ok = e.idx.Delete(r.key)
		} else {
			ok = e.idx.Put(r.key, r.loc)
		}
		if !ok {
			return errors.NewIndexUpdateError(string(r.key), "Commit")
		}
	}

	b.pending = make(map[string]pendingWrite)
	return nil
}
