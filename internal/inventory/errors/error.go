// Package errors provides custom error types for inventory operations.
package errors

import "errors"

// Validation errors. They are always reported before any mutation is applied.
var (
	ErrEmptyField      = errors.New("field is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("price per unit must be a positive number")
	ErrOutOfRange      = errors.New("position is out of range")
)

// ErrPersist is returned when the collection could not be written to disk.
// The in-memory mutation that triggered the write is kept.
var ErrPersist = errors.New("can't persist products")

// IsValidation reports whether err is one of the validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyField) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrOutOfRange)
}
