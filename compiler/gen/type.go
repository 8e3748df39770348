package gen

import (
	"fmt"

	"github.com/argentdb/argent/schema"
)

// InheritanceKind tags how a model participates in schema inheritance.
type InheritanceKind int

// Inheritance kinds.
const (
	// InheritNone marks a model without a parent.
	InheritNone InheritanceKind = iota
	// InheritSingleTable marks a child stored in its parent's table,
	// distinguished by a discriminator column.
	InheritSingleTable
	// InheritJoinedTable marks a child with its own table whose primary
	// key is also a foreign key to the parent's primary key.
	InheritJoinedTable
)

// String returns the inheritance kind name.
func (k InheritanceKind) String() string {
	switch k {
	case InheritSingleTable:
		return "single-table"
	case InheritJoinedTable:
		return "joined-table"
	default:
		return "none"
	}
}

// DiscriminatorColumn is the column added to a parent's table when it has
// single-table inheritance children. It stores the concrete model name.
const DiscriminatorColumn = "dtype"

// Type is a compiled model definition: a named type with column-backed
// fields, a primary key, a table identity and relationship slots. Types are
// immutable once compilation completes and safe for unsynchronized
// concurrent reads.
type Type struct {
	cfg    *Config
	schema *schema.Schema
	// Name holds the model (schema) name.
	Name string
	// ID holds the primary-key field.
	ID *Field
	// Fields holds the scalar fields of the model in declaration order,
	// excluding the primary key.
	Fields []*Field
	fields map[string]*Field
	// Edges holds the relationship slots of the model, declared edges
	// first, generated back-references after.
	Edges []*Edge
	// ForeignKeys holds the foreign-key columns residing in the model's
	// table.
	ForeignKeys []*ForeignKey
	foreignKeys map[string]struct{}
	// Parent points to the parent model when the schema inherits.
	Parent *Type
	// Inheritance tags the inheritance strategy of the model.
	Inheritance InheritanceKind
	// Discriminator is set on a parent whose table stores single-table
	// children.
	Discriminator *Field

	tablename string
	ownProps  schema.Properties
}

// NewType compiles the scalar part of a resolved schema into a model
// definition. Relationship properties are skipped here; the graph wires
// them as edges once every model is known. ownProps restricts the build to
// the schema's own properties when it inherits from a parent.
func NewType(cfg *Config, name string, s *schema.Schema, ownProps schema.Properties) (*Type, error) {
	typ := &Type{
		cfg:         cfg,
		schema:      s,
		Name:        name,
		tablename:   s.Tablename,
		fields:      make(map[string]*Field),
		foreignKeys: make(map[string]struct{}),
	}
	if ownProps == nil {
		ownProps = s.Properties
	}
	typ.ownProps = ownProps
	for _, prop := range ownProps {
		ps := prop.Schema
		if relationship(ps) {
			continue
		}
		switch {
		case ps.IsArray():
			// Arrays of scalars have no column mapping.
			return nil, NewUnsupportedTypeError(name, prop.Name, "array", itemType(ps))
		case ps.IsObject():
			// Free-form objects are not modeled schemas.
			return nil, NewUnsupportedTypeError(name, prop.Name, "object", ps.Format)
		}
		f, err := NewField(name, prop.Name, ps, s.RequiredSet(prop.Name))
		if err != nil {
			return nil, err
		}
		f.typ = typ
		if f.PrimaryKey {
			if typ.ID != nil {
				return nil, NewNameConflictError(name, f.Name, typ.ID.Name)
			}
			typ.ID = f
			continue
		}
		typ.Fields = append(typ.Fields, f)
		typ.fields[f.Name] = f
	}
	if typ.ID == nil && s.Inherits == "" {
		if !s.AutoID && !cfg.AutoID {
			return nil, NewMissingPrimaryKeyError(name)
		}
		typ.ID = typ.surrogateID()
	}
	return typ, nil
}

// surrogateID synthesizes the opt-in integer surrogate key.
func (t *Type) surrogateID() *Field {
	return &Field{
		typ:           t,
		Name:          "id",
		Type:          TypeInt,
		PrimaryKey:    true,
		AutoIncrement: true,
		ReadOnly:      true,
		def:           &schema.Schema{Type: "integer", ReadOnly: true},
	}
}

// relationship reports whether the property schema describes a relationship
// to a modeled schema rather than a scalar column.
func relationship(ps *schema.Schema) bool {
	if ps.DeRef != "" {
		return true
	}
	return ps.IsArray() && ps.Items != nil && ps.Items.DeRef != ""
}

func itemType(ps *schema.Schema) string {
	if ps.Items == nil {
		return ""
	}
	return ps.Items.Type
}

// Schema returns the resolved schema the model was compiled from.
func (t Type) Schema() *schema.Schema { return t.schema }

// Label returns the label of the model (snake_case of its name).
func (t Type) Label() string { return snake(t.Name) }

// Table returns the table identity of the model. Single-table children
// share their parent's table.
func (t Type) Table() string {
	if t.Inheritance == InheritSingleTable {
		return t.Parent.Table()
	}
	if t.tablename != "" {
		return t.tablename
	}
	return plural(t.Label())
}

// PK returns the primary-key field, walking up to the parent for children
// that share their parent's key.
func (t Type) PK() *Field {
	if t.ID != nil {
		return t.ID
	}
	if t.Parent != nil {
		return t.Parent.PK()
	}
	return nil
}

// Root returns the top of the inheritance chain, or the type itself.
func (t *Type) Root() *Type {
	if t.Parent == nil {
		return t
	}
	return t.Parent.Root()
}

// HasField reports whether the model declares the named scalar field,
// including the primary key and inherited fields.
func (t Type) HasField(name string) bool { return t.FieldByName(name) != nil }

// FieldByName returns the named scalar field, consulting parents.
func (t Type) FieldByName(name string) *Field {
	if t.ID != nil && t.ID.Name == name {
		return t.ID
	}
	if f, ok := t.fields[name]; ok {
		return f
	}
	if t.Parent != nil {
		return t.Parent.FieldByName(name)
	}
	return nil
}

// EdgeByName returns the named relationship slot, consulting parents.
func (t Type) EdgeByName(name string) *Edge {
	for _, e := range t.Edges {
		if e.Name == name {
			return e
		}
	}
	if t.Parent != nil {
		return t.Parent.EdgeByName(name)
	}
	return nil
}

// HasMember reports whether the name is taken by a field or an edge.
func (t Type) HasMember(name string) bool {
	return t.FieldByName(name) != nil || t.EdgeByName(name) != nil
}

// AllFields returns the model's scalar fields including inherited ones,
// parent fields first, primary key first of all.
func (t *Type) AllFields() []*Field {
	var fields []*Field
	if t.Parent != nil {
		fields = append(fields, t.Parent.AllFields()...)
	} else if t.ID != nil {
		fields = append(fields, t.ID)
	}
	fields = append(fields, t.Fields...)
	return fields
}

// AllEdges returns the model's relationship slots including inherited ones,
// parent edges first.
func (t *Type) AllEdges() []*Edge {
	var edges []*Edge
	if t.Parent != nil {
		edges = append(edges, t.Parent.AllEdges()...)
	}
	edges = append(edges, t.Edges...)
	return edges
}

// FKEdges returns all edges whose foreign-key resides in this model's table.
func (t Type) FKEdges() (edges []*Edge) {
	for _, e := range t.Edges {
		if e.OwnFK() {
			edges = append(edges, e)
		}
	}
	return
}

// NumM2M returns the model's many-to-many edge count.
func (t Type) NumM2M() int {
	var n int
	for _, e := range t.Edges {
		if e.M2M() {
			n++
		}
	}
	return n
}

// addFK records a foreign-key column on the model's table, once.
func (t *Type) addFK(fk *ForeignKey) {
	if _, ok := t.foreignKeys[fk.Field.Name]; ok {
		return
	}
	t.foreignKeys[fk.Field.Name] = struct{}{}
	t.ForeignKeys = append(t.ForeignKeys, fk)
}

// addEdge appends an edge, guarding against member name collisions.
func (t *Type) addEdge(e *Edge) error {
	if t.HasMember(e.Name) {
		owner := e.Name
		if e.Ref != nil {
			owner = e.Ref.Name
		}
		return NewNameConflictError(t.Name, e.Name, owner)
	}
	t.Edges = append(t.Edges, e)
	return nil
}

// describe is used in diagnostics.
func (t Type) describe() string {
	return fmt.Sprintf("%s (table %q)", t.Name, t.Table())
}
