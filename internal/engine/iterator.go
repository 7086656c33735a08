package engine

import (
	"github.com/iamNilotpal/ailuruskv/internal/index"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

// Entry is one key/value pair yielded by an Iterator.
type Entry struct {
	Key   []byte
	Value []byte
}

// Iterator walks a snapshot of the engine's index in key order, reading
// each entry's value from the log as it's visited. It borrows its engine;
// callers must not outlive the engine that produced them.
type Iterator struct {
	engine *Engine
	inner  *index.Iterator
}

// NewIterator returns an iterator over a snapshot of e's index taken at
// this call.
func (e *Engine) NewIterator(opts options.IteratorOptions) *Iterator {
	return &Iterator{engine: e, inner: e.idx.Iterator(opts)}
}

// Rewind resets the iterator to before its first entry.
func (it *Iterator) Rewind() { it.inner.Rewind() }

// Seek positions the iterator at the first entry matching key (per the
// iterator's direction), as index.Iterator.Seek does.
func (it *Iterator) Seek(key []byte) { it.inner.Seek(key) }

// Next advances to the next entry and reports whether one exists. Callers
// must not call Entry after Next returns false.
func (it *Iterator) Next() bool { return it.inner.Next() }

// Entry reads the current entry's key and value. It returns an error
// instead of panicking if the log read backing the current key fails —
// the safer of the two choices when the alternative is an unrecoverable
// panic deep in iteration.
func (it *Iterator) Entry() (Entry, error) {
	key := it.inner.Key()
	rec, err := it.engine.at(it.inner.Location())
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: append([]byte(nil), key...), Value: rec.Value}, nil
}
