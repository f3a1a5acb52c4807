package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Construction and ingestion errors
	ErrConfiguration     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Statistical parameter errors
	ErrValidation = errors.New("validation failed")
	ErrLookup     = errors.New("lookup failed")

	// Transformation errors
	ErrConversion           = errors.New("value conversion failed")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnknownCategory      = errors.New("unknown category")

	// Addressing errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrRowOutOfRange  = errors.New("row index out of range")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

func NewConversionError(column string, row int, raw string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: column %q row %d value %q: %v", ErrConversion, column, row, raw, cause)
	}
	return fmt.Errorf("%w: column %q row %d value %q", ErrConversion, column, row, raw)
}

func NewUnsupportedOperationError(operation, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupportedOperation, operation, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrUnsupportedFormat)
}

func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation) || errors.Is(err, ErrUnsupportedFormat)
}
