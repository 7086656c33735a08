// Package record implements the on-disk log-record codec: the exact byte
// layout every append writes and every read decodes.
//
//	+-------+--------+-----------+-------------+-----------+-------------+
//	|  4B   |   1B   |    varint |     varint  |    mut    |     mut     |
//	+-------+--------+-----------+-------------+-----------+-------------+
//	|  CRC  |  Type  |  KeySize  |  ValueSize  |    Key    |    Value    |
//	+-------+--------+-----------+-------------+-----------+-------------+
//
// CRC covers everything after it (Type through Value) and is computed with
// the IEEE polynomial, matching crc32fast's default in the original design.
package record

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/iamNilotpal/ailuruskv/pkg/errors"
)

// Type distinguishes a live value from a tombstone from the sentinel record
// that closes out a write-batch.
type Type byte

const (
	// TypeNormal is an ordinary key/value write.
	TypeNormal Type = iota + 1
	// TypeDeleted is a tombstone: Value is empty and the index drops the key.
	TypeDeleted
	// TypeBatchFinished is the sentinel appended after every record in a
	// committed write-batch. Recovery only folds a batch's records into the
	// index once it observes this record carrying the batch's sequence
	// number — see internal/engine/batch.go.
	TypeBatchFinished
)

// maxHeaderSize bounds a single positional read for the fixed-plus-varint
// header: 4 bytes CRC + 1 byte Type + up to 5 bytes each for the KeySize and
// ValueSize varints (binary.MaxVarintLen32).
const maxHeaderSize = 4 + 1 + binary.MaxVarintLen32 + binary.MaxVarintLen32

// Location pins a record to the segment and byte offset it was appended at.
type Location struct {
	FileID uint32
	Offset uint64
}

// Record is the decoded form of one log entry. Key, as stored on disk and
// as seen by this package, is already sequence-prefixed — see
// EncodeKeyWithSequence.
type Record struct {
	Key   []byte
	Value []byte
	Type  Type
}

// NonTransactionSeqNo tags records written outside any write-batch.
const NonTransactionSeqNo uint64 = 0

// EncodeKeyWithSequence prefixes key with seq as a varint. The engine calls
// this to build the on-disk Key for every record it appends (batched or
// not), and the engine strips the prefix back off with ParseKeyWithSequence
// before indexing or returning a record — this is
// how a batch's sentinel record, once observed during recovery, identifies
// exactly which already-appended records belong to it.
func EncodeKeyWithSequence(seq uint64, key []byte) []byte {
	buf := make([]byte, binary.MaxVarintLen64+len(key))
	n := binary.PutUvarint(buf, seq)
	return append(buf[:n], key...)
}

// ParseKeyWithSequence splits a sequence-prefixed key back into its
// sequence number and the caller-visible key bytes.
func ParseKeyWithSequence(data []byte) (uint64, []byte, error) {
	seq, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, errors.NewDatafileCorruptedError(
			nil, 0, 0, "malformed sequence-prefixed key",
		)
	}
	return seq, data[n:], nil
}

// ErrEndOfFile is returned by Decode when offset sits at (or effectively at,
// once trailing zero padding is accounted for) the end of written data —
// the signal recovery uses to stop scanning a segment.
var ErrEndOfFile = errors.NewStorageError(io.EOF, errors.ErrorCodeEndOfFile, "reached end of segment")

// Encode serializes r into its on-disk byte representation.
func Encode(r *Record) []byte {
	body := encodeBody(r)

	out := make([]byte, 4+len(body))
	crc := crc32.ChecksumIEEE(body)
	binary.BigEndian.PutUint32(out[:4], crc)
	copy(out[4:], body)
	return out
}

// encodeBody produces everything after the CRC field: Type, the two size
// varints, Key, and Value.
func encodeBody(r *Record) []byte {
	header := make([]byte, 1+binary.MaxVarintLen64*2)
	header[0] = byte(r.Type)
	n := 1
	n += binary.PutUvarint(header[n:], uint64(len(r.Key)))
	n += binary.PutUvarint(header[n:], uint64(len(r.Value)))

	body := make([]byte, 0, n+len(r.Key)+len(r.Value))
	body = append(body, header[:n]...)
	body = append(body, r.Key...)
	body = append(body, r.Value...)
	return body
}

// Size returns the encoded length of r, equal to len(Encode(r)), without
// allocating the key/value copies Encode produces.
func Size(r *Record) int64 {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(r.Key)))
	n += binary.PutUvarint(scratch[:], uint64(len(r.Value)))
	return int64(4 + 1 + n + len(r.Key) + len(r.Value))
}

// Decode reads and validates one record starting at offset in r, returning
// the decoded record and the number of bytes it occupies on disk (so the
// caller can advance to the next record). It returns ErrEndOfFile once
// offset reaches the end of written data, including when fewer than five
// header bytes remain, when a size varint cannot be parsed, or when the
// header is all zeros. It returns a DatafileCorrupted *errors.StorageError
// if the record type is unknown, the body is truncated, or the CRC doesn't
// match.
func Decode(r io.ReaderAt, fileID uint32, offset int64) (*Record, int64, error) {
	header := make([]byte, maxHeaderSize)
	n, err := r.ReadAt(header, offset)
	if err != nil && err != io.EOF {
		return nil, 0, errors.NewFileReadError(err, "", "", uint64(offset))
	}
	header = header[:n]

	if n < 5 {
		// Not even CRC+Type fits in what's left of the file: either a clean
		// EOF or a handful of trailing zero-padding bytes. Either way there
		// is no record here to recover.
		return nil, 0, ErrEndOfFile
	}

	crc := binary.BigEndian.Uint32(header[:4])
	typ := Type(header[4])
	pos := 5

	keySize, kn := binary.Uvarint(header[pos:])
	if kn <= 0 {
		return nil, 0, ErrEndOfFile
	}
	pos += kn

	valueSize, vn := binary.Uvarint(header[pos:])
	if vn <= 0 {
		return nil, 0, ErrEndOfFile
	}
	pos += vn
	headerLen := pos

	if crc == 0 && typ == 0 && keySize == 0 && valueSize == 0 {
		// Tolerates trailing zero-padding left by a preallocated or
		// truncated segment rather than reporting it as corruption.
		return nil, 0, ErrEndOfFile
	}

	if typ != TypeNormal && typ != TypeDeleted && typ != TypeBatchFinished {
		return nil, 0, errors.NewDatafileCorruptedError(
			nil, fileID, uint64(offset), "unknown record type",
		)
	}

	body := make([]byte, keySize+valueSize)
	if headerLen+len(body) <= n {
		copy(body, header[headerLen:headerLen+len(body)])
	} else {
		rn, err := r.ReadAt(body, offset+int64(headerLen))
		if err != nil && err != io.EOF {
			return nil, 0, errors.NewFileReadError(err, "", "", uint64(offset)+uint64(headerLen))
		}
		if rn < len(body) {
			return nil, 0, errors.NewDatafileCorruptedError(
				err, fileID, uint64(offset), "truncated record body",
			)
		}
	}

	sum := crc32.ChecksumIEEE(header[4:headerLen])
	sum = crc32.Update(sum, crc32.IEEETable, body)
	if sum != crc {
		return nil, 0, errors.NewDatafileCorruptedError(
			nil, fileID, uint64(offset), "checksum mismatch",
		)
	}

	rec := &Record{
		Key:   append([]byte(nil), body[:keySize]...),
		Value: append([]byte(nil), body[keySize:]...),
		Type:  typ,
	}
	return rec, int64(headerLen) + int64(len(body)), nil
}
