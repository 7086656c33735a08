package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ailuruskv/pkg/errors"
	"github.com/iamNilotpal/ailuruskv/pkg/options"
	"github.com/iamNilotpal/ailuruskv/pkg/seginfo"
)

func flipByteInFile(t *testing.T, path string, offset int64) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var b [1]byte
	if _, err := f.ReadAt(b[:], offset); err != nil {
		t.Fatal(err)
	}
	b[0] ^= 0xff
	if _, err := f.WriteAt(b[:], offset); err != nil {
		t.Fatal(err)
	}
}

func openTestEngine(t *testing.T, opts options.Options) *Engine {
	t.Helper()
	opts.DirPath = t.TempDir()
	if opts.DataFileSize == 0 {
		opts.DataFileSize = options.DefaultDataFileSize
	}

	e, err := Open(&Config{Options: opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// S1 - simple put/get.
func TestEngine_putGet(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	if err := e.Put([]byte("Hello"), []byte("World")); err != nil {
		t.Fatal(err)
	}

	got, err := e.Get([]byte("Hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "World" {
		t.Errorf("Get() = %q, want %q", got, "World")
	}
}

// S2 - overwrite, last-write-wins.
func TestEngine_overwrite(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	if err := e.Put([]byte("Hello"), []byte("Hello")); err != nil {
		t.Fatal(err)
	}
	if err := e.Put([]byte("Hello"), []byte("World")); err != nil {
		t.Fatal(err)
	}

	got, err := e.Get([]byte("Hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "World" {
		t.Errorf("Get() = %q, want %q", got, "World")
	}
}

// S3 - miss.
func TestEngine_getMiss(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	_, err := e.Get([]byte("Non Exist"))
	assertKeyNotFound(t, err)
}

// S4 - delete absent.
func TestEngine_deleteAbsent(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	assertKeyNotFound(t, e.Delete([]byte("x")))

	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	assertKeyNotFound(t, e.Delete([]byte("missing")))

	got, err := e.Get([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

func TestEngine_delete(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := e.Delete([]byte("k")); err != nil {
		t.Fatal(err)
	}

	_, err := e.Get([]byte("k"))
	assertKeyNotFound(t, err)
}

func TestEngine_emptyKeyRejected(t *testing.T) {
	e := openTestEngine(t, options.Options{})

	if err := e.Put(nil, []byte("v")); err == nil {
		t.Fatal("Put(nil, ...): want error, got nil")
	}
	if _, err := e.Get(nil); err == nil {
		t.Fatal("Get(nil): want error, got nil")
	}
	if err := e.Delete(nil); err == nil {
		t.Fatal("Delete(nil): want error, got nil")
	}
}

// S5 - rotation by capacity.
func TestEngine_rotationByCapacity(t *testing.T) {
	e := openTestEngine(t, options.Options{DataFileSize: 8000})

	for i := 0; i < 500; i++ {
		key := []byte(fmt.Sprintf("%04d", i))
		value := []byte(fmt.Sprintf("%05d", i))
		if err := e.Put(key, value); err != nil {
			t.Fatalf("Put(%d) error = %v", i, err)
		}
	}
	if err := e.Sync(); err != nil {
		t.Fatal(err)
	}

	ids, err := seginfo.ListFileIDs(e.opts.DirPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("after 500 records: %d .data files, want 1", len(ids))
	}

	if err := e.Put([]byte("Hello"), []byte("World")); err != nil {
		t.Fatal(err)
	}
	if err := e.Sync(); err != nil {
		t.Fatal(err)
	}

	ids, err = seginfo.ListFileIDs(e.opts.DirPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("after one more record past capacity: %d .data files, want 2", len(ids))
	}
}

// S6 - reopen recovery.
func TestEngine_reopenRecovery(t *testing.T) {
	dir := t.TempDir()
	opts := options.Options{DirPath: dir, DataFileSize: 2000, IndexType: options.IndexBTree}

	e, err := Open(&Config{Options: opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1024; i++ {
		key := []byte(fmt.Sprintf("%04d", i))
		value := []byte(fmt.Sprintf("%05d", i))
		if err := e.Put(key, value); err != nil {
			t.Fatalf("Put(%d) error = %v", i, err)
		}
	}
	if err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(&Config{Options: opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Get([]byte("0000"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "00000" {
		t.Errorf("Get(\"0000\") = %q, want %q", got, "00000")
	}

	got, err = reopened.Get([]byte("1023"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "01023" {
		t.Errorf("Get(\"1023\") = %q, want %q", got, "01023")
	}
}

// CRC rejection (invariant 6): flipping a byte on disk makes the next read
// at that offset fail with DatafileCorrupted.
func TestEngine_crcRejection(t *testing.T) {
	dir := t.TempDir()
	opts := options.Options{DirPath: dir, DataFileSize: options.DefaultDataFileSize}

	e, err := Open(&Config{Options: opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, seginfo.GenerateName(0))
	flipByteInFile(t, path, 0)

	reopened, err := Open(&Config{Options: opts, Logger: zap.NewNop().Sugar()})
	if err == nil {
		reopened.Close()
		t.Fatal("Open() after on-disk corruption: want error, got nil")
	}
	if se, ok := errors.AsStorageError(err); !ok || se.Code() != errors.ErrorCodeDatafileCorrupted {
		t.Errorf("Open() after corruption: got %v, want DatafileCorrupted", err)
	}
}

func assertKeyNotFound(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("want KeyNotFound, got nil")
	}
	if errors.GetErrorCode(err) != errors.ErrorCodeKeyNotFound {
		t.Fatalf("want KeyNotFound, got %v", err)
	}
}
