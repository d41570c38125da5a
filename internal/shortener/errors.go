package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a negative lookup result, not a fault.
	ErrNotFound = errors.New("not found")

	// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrDuplicateCode is wrapped by a StorageError when an insert hits an existing code.
	ErrDuplicateCode = errors.New("duplicate code")
)

// StorageError reports a failure of the storage gateway. Err is never shown to end users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage returns err as a StorageError for op. Nil and ErrNotFound pass through.
func WrapStorage(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err came from the storage gateway.
func IsStorageError(err error) bool {
	var se *StorageError

	return errors.As(err, &se)
}
