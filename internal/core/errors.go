package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKind        = errors.New("type must be income or expense")
	ErrInvalidAmount      = errors.New("amount must be a positive number with at most two decimals")
	ErrInvalidDate        = errors.New("date must be a valid YYYY-MM-DD day")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidYear        = errors.New("year must be between 1 and 9999")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")

	ErrNotFound = errors.New("transaction not found")
)

// ValidationError reports bad user input for a single field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is, or wraps, a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
