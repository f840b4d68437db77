package project

import (
	"errors"
	"fmt"
)

// Error categories for export and import. Concrete errors match them via errors.Is.
var (
	// ErrParse indicates malformed input bytes or text for a format.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates structurally valid input that breaks a required invariant.
	ErrValidation = errors.New("validation error")

	// ErrUnsupported indicates an operation the format does not offer.
	ErrUnsupported = errors.New("unsupported operation")
)

// ParseError describes input that could not be decoded.
type ParseError struct {
	Format string
	Field  string // offending field or column, if known
	Record string // offending record (ID, row number), if known
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Format + ": parse error"
	if e.Field != "" {
		msg += " in field " + e.Field
	}
	if e.Record != "" {
		msg += " of " + e.Record
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to work with ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ValidationError describes decoded input that violates an invariant.
type ValidationError struct {
	Format string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid %s: %s", e.Format, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Format, e.Reason)
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnsupportedOperationError is returned when a format cannot perform an operation,
// for example importing a write-only report format.
type UnsupportedOperationError struct {
	Format    string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Format, e.Operation)
}

// Is allows errors.Is to work with UnsupportedOperationError.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupported
}
