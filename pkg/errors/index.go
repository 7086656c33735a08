package errors

// IndexError provides specialized error handling for index-related
// operations: key lookups, index mutations, and the consistency checks the
// engine runs between the index and the log.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which key was being processed when the error occurred.
	key string

	// Describes what index operation was being performed when the
	// error occurred (e.g., "Get", "Put", "Delete").
	operation string
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey records which key was being processed when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithOperation records what index operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// Key returns the key that was being processed when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// Helper constructors for the index-layer failures named in the engine's
// error taxonomy.

// NewEmptyKeyError creates the error returned when a caller supplies a
// zero-length key to put/get/delete.
func NewEmptyKeyError(operation string) *ValidationError {
	return NewValidationError(nil, ErrorCodeEmptyKey, "key must not be empty").
		WithField("key").
		WithRule("non_empty").
		WithDetail("operation", operation)
}

// NewKeyNotFoundError creates the error returned when a key is absent from
// the index, or when the index pointed at a tombstone.
func NewKeyNotFoundError(key string) *IndexError {
	return NewIndexError(nil, ErrorCodeKeyNotFound, "key not found").
		WithKey(key).
		WithOperation("Get")
}

// NewIndexUpdateError creates the error returned when an index mutation
// (put or delete) reports failure.
func NewIndexUpdateError(key, operation string) *IndexError {
	return NewIndexError(nil, ErrorCodeIndexUpdate, "index failed to apply mutation").
		WithKey(key).
		WithOperation(operation)
}

// NewInternalError creates the error returned when an invariant the engine
// relies on is violated — e.g. the index names a location that the log
// reports as end-of-file.
func NewInternalError(cause error, msg string) *IndexError {
	return NewIndexError(cause, ErrorCodeInternal, msg)
}
