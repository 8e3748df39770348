package schema

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformedExtension indicates that a relational extension property
// carries an invalid value.
var ErrMalformedExtension = errors.New("schema: malformed extension property")

// ExtensionError describes an invalid "x-" extension property value.
type ExtensionError struct {
	Schema   string // schema name, when known
	Property string // extension property name, e.g. "x-tablename"
	Value    any
	Message  string
}

// Error implements the error interface.
func (e *ExtensionError) Error() string {
	prefix := "schema: extension property " + e.Property
	if e.Schema != "" {
		prefix += " on schema " + e.Schema
	}
	if e.Value != nil {
		return fmt.Sprintf("%s (value: %v): %s", prefix, e.Value, e.Message)
	}
	return prefix + ": " + e.Message
}

// Is reports whether the target matches the sentinel error for ExtensionError.
func (e *ExtensionError) Is(target error) bool {
	return target == ErrMalformedExtension
}

// NewExtensionError creates a new ExtensionError.
func NewExtensionError(schemaName, property string, value any, message string) *ExtensionError {
	return &ExtensionError{Schema: schemaName, Property: property, Value: value, Message: message}
}

// identRE matches the identifiers accepted for table, column and
// back-reference names. Lower snake_case, as emitted by the compiler.
var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether the name is a valid storage identifier.
func ValidIdent(name string) bool { return identRE.MatchString(name) }

// ValidateExt checks the relational extension properties of the schema and
// all its nested property schemas. The schema name is used in diagnostics
// only.
func (s *Schema) ValidateExt(name string) error {
	if s == nil {
		return nil
	}
	if s.Tablename != "" && !ValidIdent(s.Tablename) {
		return NewExtensionError(name, "x-tablename", s.Tablename, "must be a lower snake_case identifier")
	}
	if s.Backref != "" && !ValidIdent(s.Backref) {
		return NewExtensionError(name, "x-backref", s.Backref, "must be a lower snake_case identifier")
	}
	if s.Secondary != "" && !ValidIdent(s.Secondary) {
		return NewExtensionError(name, "x-secondary", s.Secondary, "must be a lower snake_case identifier")
	}
	if s.PrimaryKey && s.Type == "object" {
		return NewExtensionError(name, "x-primary-key", nil, "cannot be set on an object property")
	}
	if s.Secondary != "" && !s.IsArray() {
		return NewExtensionError(name, "x-secondary", s.Secondary, "is allowed on array properties only")
	}
	for _, prop := range s.Properties {
		if err := prop.Schema.ValidateExt(name + "." + prop.Name); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := s.Items.ValidateExt(name + ".items"); err != nil {
			return err
		}
	}
	for i, m := range s.AllOf {
		if err := m.ValidateExt(fmt.Sprintf("%s.allOf[%d]", name, i)); err != nil {
			return err
		}
	}
	return nil
}
