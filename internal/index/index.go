package index

import (
	stdErrors "errors"

	"github.com/google/btree"

	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/errors"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

// ErrIndexClosed is returned by Close when the index has already been
// closed. Put and Delete on a closed index report false instead.
var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// New creates an empty Index.
func New(config *Config) (*Index, error) {
	if config == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidDbPath, "index configuration is required",
		).WithField("config").WithRule("required")
	}

	return &Index{
		log:  config.Logger,
		tree: btree.NewG(btreeDegree, entryLess),
	}, nil
}

// Put replaces (or inserts) the location for key, returning whether the
// mutation was applied. It returns false only when the index is closed —
// the caller surfaces that as IndexUpdate rather than silently dropping
// the write.
func (idx *Index) Put(key []byte, loc record.Location) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed.Load() {
		return false
	}
	idx.tree.ReplaceOrInsert(entry{key: key, loc: loc})
	return true
}

// Get returns the location of key, if present.
func (idx *Index) Get(key []byte) (record.Location, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	item, ok := idx.tree.Get(entry{key: key})
	return item.loc, ok
}

// Delete removes key from the index, returning whether the mutation was
// applied. Like Put, it returns false only when the index is closed.
func (idx *Index) Delete(key []byte) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed.Load() {
		return false
	}
	idx.tree.Delete(entry{key: key})
	return true
}

// Len reports the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// Iterator returns an iterator over a point-in-time snapshot of the index,
// taken under a brief read lock via the tree's O(1) copy-on-write Clone.
// Later mutations to the live index are invisible to it.
func (idx *Index) Iterator(opts options.IteratorOptions) *Iterator {
	idx.mu.RLock()
	snapshot := idx.tree.Clone()
	idx.mu.RUnlock()

	return newIterator(snapshot, opts)
}

// Close discards the index's backing tree.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index")

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree = nil

	return nil
}
