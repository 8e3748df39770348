package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for schema graph resolution failures. All of them are
// compile-time errors: they abort compilation and no resolved schema set is
// returned.
var (
	// ErrUnresolvedReference indicates a $ref naming a schema that does
	// not exist in the input mapping.
	ErrUnresolvedReference = errors.New("argent: unresolved schema reference")
	// ErrCircularReference indicates a composition chain that references
	// itself before completing.
	ErrCircularReference = errors.New("argent: circular schema reference")
	// ErrIncompatibleMerge indicates composition members declaring the
	// same property with structurally different definitions.
	ErrIncompatibleMerge = errors.New("argent: incompatible schema merge")
)

// UnresolvedReferenceError is returned when a reference token names a
// non-existent schema.
type UnresolvedReferenceError struct {
	Schema string // schema being resolved
	Ref    string // the offending reference token
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("argent: schema %q references unknown schema %q", e.Schema, e.Ref)
}

// Is reports whether the target matches the sentinel error.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError.
func NewUnresolvedReferenceError(schemaName, ref string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{Schema: schemaName, Ref: ref}
}

// CircularReferenceError is returned when resolving a composition chain
// reaches a schema that is already being resolved. Mutual references through
// relationship-typed properties never trigger this error: those are linked
// lazily by name instead of being inlined.
type CircularReferenceError struct {
	Schema string   // schema that closed the cycle
	Chain  []string // the in-progress resolution chain
}

// Error implements the error interface.
func (e *CircularReferenceError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("argent: circular reference on schema %q (chain: %s)",
			e.Schema, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("argent: circular reference on schema %q", e.Schema)
}

// Is reports whether the target matches the sentinel error.
func (e *CircularReferenceError) Is(target error) bool {
	return target == ErrCircularReference
}

// NewCircularReferenceError creates a new CircularReferenceError.
func NewCircularReferenceError(schemaName string, chain []string) *CircularReferenceError {
	return &CircularReferenceError{Schema: schemaName, Chain: chain}
}

// IncompatibleMergeError is returned when allOf members declare the same
// property with different type/format pairs, or when the composition itself
// is malformed (e.g. more than one modeled base member).
type IncompatibleMergeError struct {
	Schema   string // schema being merged
	Property string // offending property, when applicable
	Message  string
}

// Error implements the error interface.
func (e *IncompatibleMergeError) Error() string {
	var b strings.Builder
	b.WriteString("argent: incompatible merge on schema ")
	b.WriteString(e.Schema)
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error.
func (e *IncompatibleMergeError) Is(target error) bool {
	return target == ErrIncompatibleMerge
}

// NewIncompatibleMergeError creates a new IncompatibleMergeError.
func NewIncompatibleMergeError(schemaName, property, message string) *IncompatibleMergeError {
	return &IncompatibleMergeError{Schema: schemaName, Property: property, Message: message}
}

// IsUnresolvedReference reports whether the error is an UnresolvedReferenceError.
func IsUnresolvedReference(err error) bool {
	var e *UnresolvedReferenceError
	return errors.As(err, &e)
}

// IsCircularReference reports whether the error is a CircularReferenceError.
func IsCircularReference(err error) bool {
	var e *CircularReferenceError
	return errors.As(err, &e)
}

// IsIncompatibleMerge reports whether the error is an IncompatibleMergeError.
func IsIncompatibleMerge(err error) bool {
	var e *IncompatibleMergeError
	return errors.As(err, &e)
}
