package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a write disagreed with the stored state of a natural key,
// such as an archive month already filed under the other account kind.
var ErrConflict = errors.New("conflicting write")

// ErrUnauthorized indicates that the caller failed a privileged-operation check.
var ErrUnauthorized = errors.New("not authorized")

// ErrStorage indicates a transient failure of the backing store. Jobs retry on it.
var ErrStorage = errors.New("storage error")

// Storage wraps a driver failure so that it matches ErrStorage while keeping the cause.
func Storage(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, errors.Join(ErrStorage, err))
}

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}
