// Package index provides the in-memory, ordered index mapping every live
// key to the on-disk location of its most recent record. Every mutation
// replaces or removes the mapping immediately; reads never touch disk.
//
// The mandatory (and only) implementation keeps its keys in a
// github.com/google/btree generic B-tree rather than a Go map: lookups are
// still effectively O(log n), but the tree stays sorted by key, which is
// what lets the iterator walk a snapshot in key order without a sort step
// at iteration time.
package index

import (
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ailuruskv/internal/record"
)

// entry is one node's payload in the tree: a key and where its record
// lives. Stored by value — btree.BTreeG copies items on balance, and a
// record.Location is two small fixed-size fields, cheap to copy.
type entry struct {
	key []byte
	loc record.Location
}

// entryLess orders entries lexicographically by key, matching the byte
// ordering used throughout the engine for range scans.
func entryLess(a, b entry) bool {
	return compareBytes(a.key, b.key) < 0
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// btreeDegree is the minimum number of children per internal tree node.
// google/btree recommends 32 for in-memory workloads; there's no on-disk
// page size here to tune against.
const btreeDegree = 32

// Index is the mandatory ordered index implementation.
type Index struct {
	log    *zap.SugaredLogger
	tree   *btree.BTreeG[entry]
	mu     sync.RWMutex
	closed atomic.Bool
}

// Config carries the dependencies an Index needs at construction.
type Config struct {
	Logger *zap.SugaredLogger
}
