// Package options provides the configuration surface for the storage
// engine: where it stores its segments, how large a segment is allowed to
// grow before rotating, whether every mutation is fsync'd before it
// returns, and which index implementation backs key lookups. It also
// defines the options accepted by iterators and write-batches.
package options

// IndexType selects the in-memory index implementation the engine rebuilds
// at open and consults on every read.
type IndexType int

const (
	// IndexBTree is the mandatory, ordered index implementation. It is the
	// only variant this module implements.
	IndexBTree IndexType = iota

	// IndexSkipList is declared for API completeness but unimplemented —
	// selecting it fails Open with a clear error rather than silently
	// falling back to BTree.
	IndexSkipList
)

// String renders the index type for logging.
func (t IndexType) String() string {
	switch t {
	case IndexBTree:
		return "btree"
	case IndexSkipList:
		return "skiplist"
	default:
		return "unknown"
	}
}

// Options holds the configuration parameters accepted by engine.Open. The
// zero value is not directly usable — callers build an Options with
// NewDefaultOptions and the With* functional options below.
type Options struct {
	// DirPath is the directory holding segment files. It is created if it
	// does not already exist.
	DirPath string `json:"dirPath"`

	// DataFileSize is a soft cap, in bytes, on one segment's size. A
	// segment rotates when the next record would exceed this bound. Zero
	// is rejected with DatafileSizeTooSmall.
	//
	// Default: 8 MiB.
	DataFileSize uint64 `json:"dataFileSize"`

	// SyncWrites, when true, fsyncs the active segment after every
	// mutating operation before it returns to the caller.
	//
	// Default: false.
	SyncWrites bool `json:"syncWrites"`

	// IndexType selects the index implementation. Only IndexBTree is
	// implemented.
	//
	// Default: IndexBTree.
	IndexType IndexType `json:"indexType"`
}

// IteratorOptions configures the key order and filtering of an engine or
// index iterator.
type IteratorOptions struct {
	// Reverse, when true, yields entries in descending key order.
	Reverse bool

	// Filter, when non-nil, is consulted for every candidate key; entries
	// for which it returns false are skipped.
	Filter func(key []byte) bool
}

// DefaultIteratorOptions returns the zero-value iterator configuration:
// ascending order, no filtering.
func DefaultIteratorOptions() IteratorOptions {
	return IteratorOptions{}
}

// WriteBatchOptions configures a write-batch's commit behavior.
type WriteBatchOptions struct {
	// BatchSize caps the number of pending entries a batch may commit.
	// Committing more is rejected with BatchSizeExceeded before any I/O.
	//
	// Default: 8 Mi entries.
	BatchSize uint32 `json:"batchSize"`

	// SyncOnCommit, when true, fsyncs the active segment once after the
	// batch's records (and its end-of-batch sentinel) are appended.
	//
	// Default: true.
	SyncOnCommit bool `json:"syncOnCommit"`
}

// OptionFunc mutates an Options in place. Functions of this type compose:
// apply NewDefaultOptions() first, then any number of With* calls.
type OptionFunc func(*Options)

// WithDirPath sets the directory the engine stores its segments in.
func WithDirPath(path string) OptionFunc {
	return func(o *Options) {
		if path != "" {
			o.DirPath = path
		}
	}
}

// WithDataFileSize sets the soft per-segment size cap, in bytes.
func WithDataFileSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.DataFileSize = size
		}
	}
}

// WithSyncWrites toggles fsync-after-every-write durability.
func WithSyncWrites(sync bool) OptionFunc {
	return func(o *Options) {
		o.SyncWrites = sync
	}
}

// WithIndexType selects the index implementation.
func WithIndexType(t IndexType) OptionFunc {
	return func(o *Options) {
		o.IndexType = t
	}
}
