// Package ailuruskv is the public API of the embeddable key-value store: an
// append-only, segmented log with an in-memory ordered index, in the
// Bitcask family of storage engines.
package ailuruskv

import (
	"github.com/iamNilotpal/ailuruskv/internal/engine"
	"github.com/iamNilotpal/ailuruskv/pkg/logger"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

// DB is a single open database. Create one with Open and release its
// resources with Close when done.
type DB struct {
	engine *engine.Engine
}

// Open opens (or creates) a database at the directory and configuration
// named by opts, replaying its log to rebuild the in-memory index before
// returning.
func Open(service string, opts ...options.OptionFunc) (*DB, error) {
	o := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e, err := engine.Open(&engine.Config{Options: o, Logger: logger.New(service)})
	if err != nil {
		return nil, err
	}
	return &DB{engine: e}, nil
}

// Put writes key/value, replacing any prior value for key.
func (db *DB) Put(key, value []byte) error {
	return db.engine.Put(key, value)
}

// Get returns the current value for key.
func (db *DB) Get(key []byte) ([]byte, error) {
	return db.engine.Get(key)
}

// Delete removes key. Returns KeyNotFound if key is absent.
func (db *DB) Delete(key []byte) error {
	return db.engine.Delete(key)
}

// Sync fsyncs the active segment.
func (db *DB) Sync() error {
	return db.engine.Sync()
}

// Stat returns a snapshot of the database's current state.
func (db *DB) Stat() engine.Stat {
	return db.engine.Stat()
}

// Keys returns every key matched by opts without reading values.
func (db *DB) Keys(opts options.IteratorOptions) [][]byte {
	return db.engine.Keys(opts)
}

// NewIterator returns an iterator over a snapshot of the database's index
// taken at this call.
func (db *DB) NewIterator(opts options.IteratorOptions) *engine.Iterator {
	return db.engine.NewIterator(opts)
}

// NewBatch returns an empty write-batch bound to db. Staged writes become
// visible atomically on Batch.Commit.
func (db *DB) NewBatch(opts options.WriteBatchOptions) *engine.Batch {
	return db.engine.NewBatch(opts)
}

// Close releases every resource the database holds.
func (db *DB) Close() error {
	return db.engine.Close()
}
