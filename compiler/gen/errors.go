// Package gen compiles resolved schema definitions into relational model
// definitions: typed fields with storage column semantics, relationship
// edges with foreign-key and association-table placement, and a registry of
// compiled models consulted for lazy reference resolution.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for model compilation failures. All of them are fatal to
// compilation: no partial model registry is exposed when any of them occurs.
var (
	// ErrUnsupportedType indicates a type/format pair with no storage
	// column mapping.
	ErrUnsupportedType = errors.New("argent: unsupported type")
	// ErrNameConflict indicates a back-reference name colliding with an
	// existing field on the target model.
	ErrNameConflict = errors.New("argent: name conflict")
	// ErrDuplicateModel indicates two schemas claiming the same table
	// identity.
	ErrDuplicateModel = errors.New("argent: duplicate model")
	// ErrMissingPrimaryKey indicates a modeled schema with no primary key
	// property and no surrogate key opt-in.
	ErrMissingPrimaryKey = errors.New("argent: missing primary key")
)

// UnsupportedTypeError is returned when a property requests a type/format
// combination that has no storage mapping.
type UnsupportedTypeError struct {
	Schema   string // schema name
	Property string // property path
	Type     string
	Format   string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "argent: unsupported type on schema %q", e.Schema)
	if e.Property != "" {
		fmt.Fprintf(&b, " property %q", e.Property)
	}
	fmt.Fprintf(&b, ": no column mapping for type=%q format=%q", e.Type, e.Format)
	return b.String()
}

// Is reports whether the target matches the sentinel error.
func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// NewUnsupportedTypeError creates a new UnsupportedTypeError.
func NewUnsupportedTypeError(schemaName, property, typ, format string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Schema: schemaName, Property: property, Type: typ, Format: format}
}

// NameConflictError is returned when a back-reference name collides with an
// existing field or relationship on the target model.
type NameConflictError struct {
	Model string // model carrying the conflicting member
	Name  string // the conflicting name
	Edge  string // the relationship that requested the name
}

// Error implements the error interface.
func (e *NameConflictError) Error() string {
	return fmt.Sprintf("argent: back-reference %q of relationship %q conflicts with an existing member on model %q",
		e.Name, e.Edge, e.Model)
}

// Is reports whether the target matches the sentinel error.
func (e *NameConflictError) Is(target error) bool { return target == ErrNameConflict }

// NewNameConflictError creates a new NameConflictError.
func NewNameConflictError(model, name, edge string) *NameConflictError {
	return &NameConflictError{Model: model, Name: name, Edge: edge}
}

// DuplicateModelError is returned when two schemas claim the same table
// identity. Single-table inheritance children legitimately share their
// parent's table and are exempt.
type DuplicateModelError struct {
	Table  string // the duplicated table identity
	Schema string // schema attempting the duplicate registration
	First  string // schema that registered the identity first
}

// Error implements the error interface.
func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("argent: duplicate table identity %q on schema %q, already registered by schema %q",
		e.Table, e.Schema, e.First)
}

// Is reports whether the target matches the sentinel error.
func (e *DuplicateModelError) Is(target error) bool { return target == ErrDuplicateModel }

// NewDuplicateModelError creates a new DuplicateModelError.
func NewDuplicateModelError(table, schemaName, first string) *DuplicateModelError {
	return &DuplicateModelError{Table: table, Schema: schemaName, First: first}
}

// MissingPrimaryKeyError is returned when a modeled schema designates no
// primary key property and does not opt in to a synthesized surrogate key.
type MissingPrimaryKeyError struct {
	Schema string
}

// Error implements the error interface.
func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("argent: schema %q has no primary key property; mark one with x-primary-key or opt in to a surrogate key with x-auto-id", e.Schema)
}

// Is reports whether the target matches the sentinel error.
func (e *MissingPrimaryKeyError) Is(target error) bool { return target == ErrMissingPrimaryKey }

// NewMissingPrimaryKeyError creates a new MissingPrimaryKeyError.
func NewMissingPrimaryKeyError(schemaName string) *MissingPrimaryKeyError {
	return &MissingPrimaryKeyError{Schema: schemaName}
}

// IsUnsupportedType reports whether the error is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var e *UnsupportedTypeError
	return errors.As(err, &e)
}

// IsNameConflict reports whether the error is a NameConflictError.
func IsNameConflict(err error) bool {
	var e *NameConflictError
	return errors.As(err, &e)
}

// IsDuplicateModel reports whether the error is a DuplicateModelError.
func IsDuplicateModel(err error) bool {
	var e *DuplicateModelError
	return errors.As(err, &e)
}

// IsMissingPrimaryKey reports whether the error is a MissingPrimaryKeyError.
func IsMissingPrimaryKey(err error) bool {
	var e *MissingPrimaryKeyError
	return errors.As(err, &e)
}
