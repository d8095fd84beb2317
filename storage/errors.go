package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no document matched a filter. It is a normal
	// return value for FindOne/UpdateOne/DeleteOne callers, not a fault.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID reports an identifier string that does not decode to the
	// active backend's native identifier type.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrUnavailable reports that the backing store is unreachable or not
	// configured. Safe to retry after the configuration is fixed.
	ErrUnavailable = errors.New("store unavailable")
)

// StorageError wraps an unexpected backend failure with the backend name and
// the operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func opError(backend, op string, err error) error {
	return &StorageError{Backend: backend, Op: op, Err: err}
}
