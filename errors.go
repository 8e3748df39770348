package argent

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for conversion operations. Unlike compilation
// errors, these are recoverable: they are returned per decode/encode call
// and never affect the compiled model registry.
var (
	// ErrReadOnlyViolation is returned when decode input supplies a value
	// for a read-only property.
	ErrReadOnlyViolation = errors.New("argent: read-only violation")

	// ErrUnknownField is returned in strict mode when decode input
	// contains a key no model property matches.
	ErrUnknownField = errors.New("argent: unknown field")

	// ErrValidation is returned when a supplied value does not conform to
	// its property schema.
	ErrValidation = errors.New("argent: validation failed")
)

// ReadOnlyViolationError represents decode input supplying a read-only
// property.
type ReadOnlyViolationError struct {
	model string
	field string // field path, e.g. "owner.id"
}

// Error returns the error string.
func (e *ReadOnlyViolationError) Error() string {
	return fmt.Sprintf("argent: field %q of model %s is read-only and cannot be supplied", e.field, e.model)
}

// Is reports whether the target error matches ReadOnlyViolationError.
func (e *ReadOnlyViolationError) Is(err error) bool {
	return err == ErrReadOnlyViolation
}

// Model returns the model name.
func (e *ReadOnlyViolationError) Model() string {
	return e.model
}

// Field returns the field path.
func (e *ReadOnlyViolationError) Field() string {
	return e.field
}

// NewReadOnlyViolationError returns a new ReadOnlyViolationError for the
// given model and field path.
func NewReadOnlyViolationError(model, field string) *ReadOnlyViolationError {
	return &ReadOnlyViolationError{model: model, field: field}
}

// IsReadOnlyViolation returns true if the error is a ReadOnlyViolationError.
func IsReadOnlyViolation(err error) bool {
	if err == nil {
		return false
	}
	var e *ReadOnlyViolationError
	return errors.As(err, &e) || errors.Is(err, ErrReadOnlyViolation)
}

// UnknownFieldError represents decode input carrying a key that matches no
// model property.
type UnknownFieldError struct {
	model string
	field string
}

// Error returns the error string.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("argent: model %s has no field %q", e.model, e.field)
}

// Is reports whether the target error matches UnknownFieldError.
func (e *UnknownFieldError) Is(err error) bool {
	return err == ErrUnknownField
}

// Model returns the model name.
func (e *UnknownFieldError) Model() string {
	return e.model
}

// Field returns the unknown field name.
func (e *UnknownFieldError) Field() string {
	return e.field
}

// NewUnknownFieldError returns a new UnknownFieldError for the given model
// and field name.
func NewUnknownFieldError(model, field string) *UnknownFieldError {
	return &UnknownFieldError{model: model, field: field}
}

// IsUnknownField returns true if the error is an UnknownFieldError.
func IsUnknownField(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownFieldError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownField)
}

// ValidationError represents a supplied value that does not conform to its
// property schema.
type ValidationError struct {
	model string
	field string // field path, e.g. "pets[1].born_at"
	value any
	msg   string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("argent: invalid value for field %q of model %s: %s", e.field, e.model, e.msg)
	}
	return fmt.Sprintf("argent: invalid value for model %s: %s", e.model, e.msg)
}

// Is reports whether the target error matches ValidationError.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// Model returns the model name.
func (e *ValidationError) Model() string {
	return e.model
}

// Field returns the field path.
func (e *ValidationError) Field() string {
	return e.field
}

// Value returns the offending value, if available.
func (e *ValidationError) Value() any {
	return e.value
}

// NewValidationError returns a new ValidationError for the given model,
// field path and offending value.
func NewValidationError(model, field string, value any, msg string) *ValidationError {
	return &ValidationError{model: model, field: field, value: value, msg: msg}
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}
