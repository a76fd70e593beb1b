package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every "entity does not exist" error.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is wrapped by errors raised when a unique name is already taken.
	ErrDuplicateName = errors.New("already exists")
)

// ValidationError is returned when caller input is missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError is returned when an uploaded file cannot be persisted
type StorageError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface for StorageError
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError checks if an error is a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
