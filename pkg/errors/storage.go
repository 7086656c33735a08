package errors

import "fmt"

// StorageError is a specialized error type for failures in the segment and
// I/O layers — opening, reading, writing, or syncing a data file, or
// discovering that the directory layout itself is broken.
type StorageError struct {
	*baseError
	fileID   uint32 // Which segment was being accessed when the error occurred.
	offset   uint64 // Byte offset within the segment where the problem happened.
	fileName string // Name of the file that caused the issue.
	path     string // Path of the file that caused the issue.
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithFileID records which segment was involved in the error.
func (se *StorageError) WithFileID(id uint32) *StorageError {
	se.fileID = id
	return se
}

// WithOffset records the byte position where the error occurred.
func (se *StorageError) WithOffset(offset uint64) *StorageError {
	se.offset = offset
	return se
}

// WithFileName captures which file was being processed when the error occurred.
func (se *StorageError) WithFileName(fileName string) *StorageError {
	se.fileName = fileName
	return se
}

// WithPath captures which path was being processed when the error occurred.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// FileID returns the segment identifier where the error occurred.
func (se *StorageError) FileID() uint32 {
	return se.fileID
}

// Offset returns the byte offset within the segment where the problem
// happened. Combined with FileID this gives the exact record location.
func (se *StorageError) Offset() uint64 {
	return se.offset
}

// FileName returns the name of the file that was being processed.
func (se *StorageError) FileName() string {
	return se.fileName
}

// Path returns the path of the file that was being processed.
func (se *StorageError) Path() string {
	return se.path
}

// NewDatafileNotFoundError builds the error returned when the index names a
// segment that isn't open in either the active slot or the idle map.
func NewDatafileNotFoundError(fileID uint32) *StorageError {
	return NewStorageError(
		nil, ErrorCodeDatafileNotFound,
		fmt.Sprintf("segment %d referenced by the index is not open", fileID),
	).WithFileID(fileID)
}

// NewDatafileCorruptedError builds the error returned by the codec or by
// recovery when a record fails its CRC check or carries an unknown type.
func NewDatafileCorruptedError(err error, fileID uint32, offset uint64, reason string) *StorageError {
	return NewStorageError(err, ErrorCodeDatafileCorrupted, reason).
		WithFileID(fileID).
		WithOffset(offset)
}

// NewInvalidDbPathError builds the error returned when dir_path is unusable.
func NewInvalidDbPathError(path string, cause error) *StorageError {
	return NewStorageError(cause, ErrorCodeInvalidDbPath, "database directory path is invalid").
		WithPath(path)
}

// NewCreateDbDirError builds the error returned when the data directory
// cannot be created.
func NewCreateDbDirError(cause error, path string) *StorageError {
	return ClassifyIOError(cause, ErrorCodeCreateDbDir, "failed to create database directory", path, "")
}

// NewReadDbDirError builds the error returned when the data directory
// cannot be listed during recovery.
func NewReadDbDirError(cause error, path string) *StorageError {
	return ClassifyIOError(cause, ErrorCodeReadDbDir, "failed to read database directory", path, "")
}

// NewFileOpenError builds the error returned when a segment file cannot be opened.
func NewFileOpenError(cause error, path, fileName string) *StorageError {
	return ClassifyIOError(cause, ErrorCodeFileOpen, "failed to open segment file", path, fileName)
}

// NewFileReadError builds the error returned when a positional read fails.
func NewFileReadError(cause error, path, fileName string, offset uint64) *StorageError {
	return ClassifyIOError(cause, ErrorCodeFileRead, "failed to read segment file", path, fileName).
		WithOffset(offset)
}

// NewFileWriteError builds the error returned when an append fails.
func NewFileWriteError(cause error, path, fileName string) *StorageError {
	return ClassifyIOError(cause, ErrorCodeFileWrite, "failed to write segment file", path, fileName)
}

// NewFileSyncError builds the error returned when fsync fails.
func NewFileSyncError(cause error, path, fileName string) *StorageError {
	return ClassifyIOError(cause, ErrorCodeFileSync, "failed to sync segment file", path, fileName)
}
