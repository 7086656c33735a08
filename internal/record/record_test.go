package record

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/ailuruskv/pkg/errors"
)

func TestEncodeDecode_roundTrip(t *testing.T) {
	rec := &Record{Key: []byte("ailurus-kv"), Value: []byte("is Awesome"), Type: TypeNormal}
	encoded := Encode(rec)

	if int64(len(encoded)) != Size(rec) {
		t.Fatalf("Size() = %d, want %d", Size(rec), len(encoded))
	}

	got, n, err := Decode(bytes.NewReader(encoded), 0, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != int64(len(encoded)) {
		t.Errorf("Decode() consumed %d bytes, want %d", n, len(encoded))
	}
	if !bytes.Equal(got.Key, rec.Key) {
		t.Errorf("Decode() key = %q, want %q", got.Key, rec.Key)
	}
	if !bytes.Equal(got.Value, rec.Value) {
		t.Errorf("Decode() value = %q, want %q", got.Value, rec.Value)
	}
	if got.Type != TypeNormal {
		t.Errorf("Decode() type = %v, want %v", got.Type, TypeNormal)
	}
}

// Exercises the same *os.File-backed path the engine uses, rather than an
// in-memory reader.
func TestDecode_multipleRecordsSequentially(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records := []*Record{
		{Key: []byte("a"), Value: []byte("val-a"), Type: TypeNormal},
		{Key: []byte("b"), Value: []byte("val-b"), Type: TypeNormal},
		{Key: []byte("c"), Value: nil, Type: TypeDeleted},
	}

	var offset int64
	for _, r := range records {
		b := Encode(r)
		if _, err := f.WriteAt(b, offset); err != nil {
			t.Fatal(err)
		}
		offset += int64(len(b))
	}

	var readOffset int64
	for i, want := range records {
		got, n, err := Decode(f, 0, readOffset)
		if err != nil {
			t.Fatalf("record %d: Decode() error = %v", i, err)
		}
		if !bytes.Equal(got.Key, want.Key) {
			t.Errorf("record %d: key = %q, want %q", i, got.Key, want.Key)
		}
		if got.Type != want.Type {
			t.Errorf("record %d: type = %v, want %v", i, got.Type, want.Type)
		}
		readOffset += n
	}

	if _, _, err := Decode(f, 0, readOffset); err == nil {
		t.Fatal("Decode() at end of file: want ErrEndOfFile, got nil")
	} else if se, ok := errors.AsStorageError(err); !ok || se.Code() != errors.ErrorCodeEndOfFile {
		t.Errorf("Decode() at end of file: got %v, want ErrEndOfFile", err)
	}
}

func TestDecode_corruptedChecksum(t *testing.T) {
	rec := &Record{Key: []byte("k"), Value: []byte("v"), Type: TypeNormal}
	encoded := Encode(rec)
	encoded[0] ^= 0xff // flip a byte in the CRC field

	dir := t.TempDir()
	path := filepath.Join(dir, "segment")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, _, err := Decode(f, 7, 0); err == nil {
		t.Fatal("Decode() with corrupted checksum: want error, got nil")
	} else if se, ok := errors.AsStorageError(err); !ok || se.Code() != errors.ErrorCodeDatafileCorrupted {
		t.Errorf("Decode() with corrupted checksum: got %v, want DatafileCorrupted", err)
	}
}

func TestDecode_unknownType(t *testing.T) {
	rec := &Record{Key: []byte("k"), Value: []byte("v"), Type: TypeNormal}
	encoded := Encode(rec)
	encoded[4] = 0x7f // overwrite Type with an unrecognized value; CRC will also mismatch

	dir := t.TempDir()
	path := filepath.Join(dir, "segment")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, _, err := Decode(f, 0, 0); err == nil {
		t.Fatal("Decode() with unknown type byte: want error, got nil")
	}
}

func TestEncodeDecode_keyWithSequence(t *testing.T) {
	key := []byte("mykey")
	encoded := EncodeKeyWithSequence(42, key)

	seq, got, err := ParseKeyWithSequence(encoded)
	if err != nil {
		t.Fatalf("ParseKeyWithSequence() error = %v", err)
	}
	if seq != 42 {
		t.Errorf("ParseKeyWithSequence() seq = %d, want 42", seq)
	}
	if !bytes.Equal(got, key) {
		t.Errorf("ParseKeyWithSequence() key = %q, want %q", got, key)
	}
}
