// Package errors provides the structured error taxonomy used throughout the
// storage engine. Every failure category a caller needs to branch on —
// an empty key, a missing key, a corrupted segment, an exhausted batch — is
// its own ErrorCode rather than something recovered by parsing a message.
//
// The system is built around a hierarchical structure: a foundational
// baseError carries a cause, a message, a code, and free-form details, and
// domain-specific types (StorageError, IndexError, ValidationError) embed
// it and add the context relevant to their layer — a segment ID and byte
// offset for storage failures, a key and operation for index failures, a
// field and rule for validation failures.
//
// Callers that only care about the failure category compare against
// GetErrorCode(err); callers that need the richer context use errors.As
// (or the As*Error helpers below) to reach the concrete type.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// baseError is the common foundation every domain error in this package
// embeds. It follows Go's error-wrapping convention so that errors.Is/As
// keep working across layers while still carrying a stable code and the
// free-form details (segment offsets, keys, batch sizes — whatever the
// embedding type's With* methods stash there) each layer's structured
// logging calls pull out via Details().
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any
}

// NewBaseError creates a baseError with the given cause, code, and message.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage replaces the error message.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode replaces the error code.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail attaches a lazily-allocated piece of structured context, e.g.
// the segment id a StorageError failed against or the key an IndexError
// was resolving.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (b *baseError) Error() string {
	return b.message
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (b *baseError) Unwrap() error {
	return b.cause
}

// Code returns the error code, for callers that branch on failure category
// without walking the chain with errors.As.
func (b *baseError) Code() ErrorCode {
	return b.code
}

// Details returns the structured context attached via WithDetail. The
// caller gets the live map, not a copy — callers that log it should treat
// it as read-only.
func (b *baseError) Details() map[string]any {
	return b.details
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// IsIndexError reports whether err is, or wraps, a *IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return stdErrors.As(err, &ie)
}

// AsValidationError extracts a *ValidationError from err's chain, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts a *StorageError from err's chain, if present.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsIndexError extracts a *IndexError from err's chain, if present.
func AsIndexError(err error) (*IndexError, bool) {
	var ie *IndexError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// GetErrorCode extracts the ErrorCode from any error produced by this
// package, or ErrorCodeInternal for anything else. Useful for metrics and
// for switch-based handling without caring which concrete type produced it.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	if ie, ok := AsIndexError(err); ok {
		return ie.Code()
	}
	return ErrorCodeInternal
}

// ClassifyIOError inspects the underlying syscall errno behind a filesystem
// error and returns the StorageError with the most specific code it can —
// permission denied, disk full, and read-only filesystem each have a
// distinct operator remedy, so they don't get flattened into a generic I/O
// failure when the kernel already told us which one it was.
func ClassifyIOError(err error, fallback ErrorCode, msg, path, fileName string) *StorageError {
	if err == nil {
		return NewStorageError(nil, fallback, msg).WithPath(path).WithFileName(fileName)
	}

	if os.IsPermission(err) {
		return NewStorageError(err, ErrorCodePermissionDenied, msg).
			WithPath(path).WithFileName(fileName)
	}

	var pathErr *os.PathError
	if stdErrors.As(err, &pathErr) {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(err, ErrorCodeDiskFull, msg).
					WithPath(path).WithFileName(fileName)
			case syscall.EROFS:
				return NewStorageError(err, ErrorCodeFilesystemReadonly, msg).
					WithPath(path).WithFileName(fileName)
			}
		}
	}

	return NewStorageError(err, fallback, msg).WithPath(path).WithFileName(fileName)
}
