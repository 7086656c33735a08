package index

import (
	"sort"

	"github.com/google/btree"

	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

// Iterator walks a single snapshot of the index in key order (or reverse
// key order), optionally skipping keys a filter rejects. It is built once,
// eagerly, from the snapshot handed to it — cheap here because the
// snapshot itself is a cloned tree, and materializing its contents into a
// slice gives Seek a plain binary search instead of repeated tree descents.
type Iterator struct {
	items   []entry
	pos     int
	reverse bool
}

func newIterator(snapshot *btree.BTreeG[entry], opts options.IteratorOptions) *Iterator {
	items := make([]entry, 0, snapshot.Len())
	visit := func(e entry) bool {
		if opts.Filter == nil || opts.Filter(e.key) {
			items = append(items, e)
		}
		return true
	}

	if opts.Reverse {
		snapshot.Descend(visit)
	} else {
		snapshot.Ascend(visit)
	}

	return &Iterator{items: items, pos: -1, reverse: opts.Reverse}
}

// Rewind resets the iterator to just before its first entry.
func (it *Iterator) Rewind() {
	it.pos = -1
}

// Seek positions the iterator so that the next call to Next lands on the
// first entry >= key (or <= key when iterating in reverse).
func (it *Iterator) Seek(key []byte) {
	cmp := func(i int) bool { return compareBytes(it.items[i].key, key) >= 0 }
	if it.reverse {
		cmp = func(i int) bool { return compareBytes(it.items[i].key, key) <= 0 }
	}

	idx := sort.Search(len(it.items), cmp)
	it.pos = idx - 1
}

// Next advances to the next entry and reports whether one exists.
func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.items)
}

// Key returns the current entry's key.
func (it *Iterator) Key() []byte {
	return it.items[it.pos].key
}

// Location returns the current entry's record location.
func (it *Iterator) Location() record.Location {
	return it.items[it.pos].loc
}

// Len reports the total number of entries this iterator will yield.
func (it *Iterator) Len() int {
	return len(it.items)
}
