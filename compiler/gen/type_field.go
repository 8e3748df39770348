package gen

import (
	"fmt"

	"github.com/argentdb/argent/schema"
)

// ColumnType is the storage column type tag derived from a scalar schema's
// type/format pair. Exactly one tag is assigned per scalar property;
// unmapped pairs are rejected at compile time.
type ColumnType int

// Column types.
const (
	TypeInvalid  ColumnType = iota
	TypeInt                 // integer without format, platform default width
	TypeInt32               // integer/int32
	TypeInt64               // integer/int64
	TypeFloat               // number/float (and number without format)
	TypeDouble              // number/double
	TypeBool                // boolean
	TypeString              // string without format, optionally size-bounded
	TypeText                // string/password, opaque unbounded text
	TypeDate                // string/date
	TypeDateTime            // string/date-time
	TypeBytes               // string/binary
	TypeUUID                // string/uuid
	TypeEnum                // any scalar with an enum list
)

var columnTypeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeInt:      "int",
	TypeInt32:    "int32",
	TypeInt64:    "int64",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeText:     "text",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeBytes:    "bytes",
	TypeUUID:     "uuid",
	TypeEnum:     "enum",
}

// String returns the column type name.
func (t ColumnType) String() string {
	if t >= 0 && int(t) < len(columnTypeNames) {
		return columnTypeNames[t]
	}
	return fmt.Sprintf("invalid<%d>", t)
}

// Valid reports whether the column type is a known tag.
func (t ColumnType) Valid() bool { return t > TypeInvalid && int(t) < len(columnTypeNames) }

// Numeric reports whether the column type holds a numeric value.
func (t ColumnType) Numeric() bool {
	switch t {
	case TypeInt, TypeInt32, TypeInt64, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// Integer reports whether the column type holds an integer value.
func (t ColumnType) Integer() bool {
	switch t {
	case TypeInt, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// Textual reports whether the column type holds a character value.
func (t ColumnType) Textual() bool {
	switch t {
	case TypeString, TypeText, TypeEnum:
		return true
	}
	return false
}

// Field is a scalar model field backed by a storage column.
type Field struct {
	def *schema.Schema
	typ *Type
	// Name is the property (and column) name.
	Name string
	// Type is the storage column type tag.
	Type ColumnType
	// Nillable reports whether the column accepts NULL. A property is
	// non-nillable only when it is required and not read-only.
	Nillable bool
	// Required reports whether the property is listed in the schema's
	// required set.
	Required bool
	// PrimaryKey marks the field as the model's primary key.
	PrimaryKey bool
	// AutoIncrement marks an integer primary key as database-generated.
	AutoIncrement bool
	// Unique adds a unique constraint on the column.
	Unique bool
	// Indexed adds a non-unique index on the column.
	Indexed bool
	// ReadOnly properties are produced by the backend and rejected in
	// decode input.
	ReadOnly bool
	// WriteOnly properties are accepted in decode input and omitted from
	// encode output.
	WriteOnly bool
	// Size bounds a string column (maxLength).
	Size *int
	// Enums holds the allowed values of an enum-constrained column.
	Enums []any
	// Default is the schema-declared default value, if any.
	Default any
	// Minimum/Maximum/Pattern carry the value constraints enforced by
	// the conversion facade.
	Minimum *float64
	Maximum *float64
	Pattern string
}

// NewField maps a scalar property schema to a column-backed field. It is a
// pure function of the property schema and its owner's required set.
func NewField(typeName, name string, ps *schema.Schema, required bool) (*Field, error) {
	ct, err := columnType(typeName, name, ps)
	if err != nil {
		return nil, err
	}
	f := &Field{
		def:           ps,
		Name:          name,
		Type:          ct,
		Required:      required,
		Nillable:      !required || ps.ReadOnly,
		PrimaryKey:    ps.PrimaryKey,
		AutoIncrement: ps.PrimaryKey && ps.AutoIncrement,
		Unique:        ps.Unique,
		Indexed:       ps.Index,
		ReadOnly:      ps.ReadOnly,
		WriteOnly:     ps.WriteOnly,
		Size:          ps.MaxLength,
		Enums:         ps.Enum,
		Default:       ps.Default,
		Minimum:       ps.Minimum,
		Maximum:       ps.Maximum,
		Pattern:       ps.Pattern,
	}
	if f.PrimaryKey {
		// Key columns never accept NULL regardless of the required set.
		f.Nillable = false
	}
	if f.AutoIncrement && !ct.Integer() {
		return nil, NewUnsupportedTypeError(typeName, name, ps.Type, ps.Format)
	}
	return f, nil
}

// columnType dispatches a type/format pair to its storage column type.
func columnType(typeName, property string, ps *schema.Schema) (ColumnType, error) {
	if len(ps.Enum) > 0 {
		switch ps.Type {
		case "string", "integer":
			return TypeEnum, nil
		default:
			return TypeInvalid, NewUnsupportedTypeError(typeName, property, ps.Type, ps.Format)
		}
	}
	switch ps.Type {
	case "string":
		switch ps.Format {
		case "":
			return TypeString, nil
		case "date":
			return TypeDate, nil
		case "date-time":
			return TypeDateTime, nil
		case "binary", "byte":
			return TypeBytes, nil
		case "password":
			return TypeText, nil
		case "uuid":
			return TypeUUID, nil
		}
	case "integer":
		switch ps.Format {
		case "":
			return TypeInt, nil
		case "int32":
			return TypeInt32, nil
		case "int64":
			return TypeInt64, nil
		}
	case "number":
		switch ps.Format {
		case "", "float":
			return TypeFloat, nil
		case "double":
			return TypeDouble, nil
		}
	case "boolean":
		if ps.Format == "" {
			return TypeBool, nil
		}
	}
	return TypeInvalid, NewUnsupportedTypeError(typeName, property, ps.Type, ps.Format)
}

// Schema returns the resolved property schema backing the field.
func (f Field) Schema() *schema.Schema { return f.def }

// Model returns the model the field belongs to.
func (f Field) Model() *Type { return f.typ }

// Constant returns the constant-style name of the field.
func (f Field) Constant() string { return "Field" + pascal(f.Name) }

// StructField returns the exported member name of the field.
func (f Field) StructField() string { return pascal(f.Name) }

// IsEnum reports whether the field holds an enum-constrained value.
func (f Field) IsEnum() bool { return f.Type == TypeEnum }

// EnumValues returns the allowed values of an enum field.
func (f Field) EnumValues() []any { return f.Enums }
