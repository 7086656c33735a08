package index

import (
	"bytes"
	"testing"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ailuruskv/internal/record"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(&Config{Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestIndex_putGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	loc := record.Location{FileID: 1, Offset: 10}
	if ok := idx.Put([]byte("a"), loc); !ok {
		t.Error("Put() on new key reported failure")
	}

	got, ok := idx.Get([]byte("a"))
	if !ok {
		t.Fatal("Get() after Put(): not found")
	}
	if got != loc {
		t.Errorf("Get() = %+v, want %+v", got, loc)
	}

	if ok := idx.Delete([]byte("a")); !ok {
		t.Fatal("Delete() reported failure")
	}
	if _, ok := idx.Get([]byte("a")); ok {
		t.Error("Get() after Delete(): still found")
	}
}

func TestIndex_putDeleteFailAfterClose(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	if ok := idx.Put([]byte("a"), record.Location{}); ok {
		t.Error("Put() on closed index reported success")
	}
	if ok := idx.Delete([]byte("a")); ok {
		t.Error("Delete() on closed index reported success")
	}
}

func TestIndex_iteratorOrderedScenario(t *testing.T) {
	idx := newTestIndex(t)

	keys := []string{"a", "b", "c"}
	for i, k := range keys {
		idx.Put([]byte(k), record.Location{FileID: 0, Offset: uint64(i)})
	}

	it := idx.Iterator(options.DefaultIteratorOptions())
	it.Rewind()
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if len(got) != len(keys) {
		t.Fatalf("ascending iteration got %v, want %v", got, keys)
	}
	for i, k := range keys {
		if got[i] != k {
			t.Errorf("ascending iteration[%d] = %q, want %q", i, got[i], k)
		}
	}

	rev := idx.Iterator(options.IteratorOptions{Reverse: true})
	var gotRev []string
	for rev.Next() {
		gotRev = append(gotRev, string(rev.Key()))
	}
	want := []string{"c", "b", "a"}
	for i := range want {
		if gotRev[i] != want[i] {
			t.Errorf("reverse iteration[%d] = %q, want %q", i, gotRev[i], want[i])
		}
	}

	seekIt := idx.Iterator(options.DefaultIteratorOptions())
	seekIt.Seek([]byte("b"))
	if !seekIt.Next() || string(seekIt.Key()) != "b" {
		t.Errorf("Seek(%q) then Next(): want %q", "b", "b")
	}
	if !seekIt.Next() || string(seekIt.Key()) != "c" {
		t.Error("Seek(\"b\") then Next() twice: want \"c\"")
	}
}

func TestIndex_iteratorSnapshotIsolation(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put([]byte("a"), record.Location{FileID: 0, Offset: 0})

	it := idx.Iterator(options.DefaultIteratorOptions())

	idx.Put([]byte("b"), record.Location{FileID: 0, Offset: 1})
	idx.Delete([]byte("a"))

	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("iterator taken before mutation, got %v, want [a]", got)
	}
}

func TestIndex_iteratorFilter(t *testing.T) {
	idx := newTestIndex(t)
	for _, k := range []string{"a", "b", "c"} {
		idx.Put([]byte(k), record.Location{})
	}

	it := idx.Iterator(options.IteratorOptions{
		Filter: func(key []byte) bool { return !bytes.Equal(key, []byte("b")) },
	})

	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if len(got) != 2 {
		t.Fatalf("filtered iteration got %v, want 2 entries", got)
	}
	for _, k := range got {
		if k == "b" {
			t.Error("filtered iteration unexpectedly yielded \"b\"")
		}
	}
}
