package options

const (
	// DefaultDirPath is used when no directory is supplied; callers almost
	// always override this with WithDirPath.
	DefaultDirPath = "/var/lib/ailuruskv"

	// DefaultDataFileSize is the soft per-segment size cap: 8 MiB.
	DefaultDataFileSize uint64 = 8 * 1024 * 1024

	// DefaultBatchSize is the maximum number of pending entries a
	// write-batch may commit: 8 Mi entries.
	DefaultBatchSize uint32 = 8 * 1024 * 1024
)

// defaultOptions holds the baseline configuration every Options starts from.
var defaultOptions = Options{
	DirPath:      DefaultDirPath,
	DataFileSize: DefaultDataFileSize,
	SyncWrites:   false,
	IndexType:    IndexBTree,
}

// NewDefaultOptions returns the baseline Options. Callers apply OptionFuncs
// on top of it to override individual fields.
func NewDefaultOptions() Options {
	return defaultOptions
}

// defaultWriteBatchOptions holds the baseline write-batch configuration.
var defaultWriteBatchOptions = WriteBatchOptions{
	BatchSize:    DefaultBatchSize,
	SyncOnCommit: true,
}

// NewDefaultWriteBatchOptions returns the baseline WriteBatchOptions.
func NewDefaultWriteBatchOptions() WriteBatchOptions {
	return defaultWriteBatchOptions
}
