package gen

import (
	"fmt"

	"github.com/argentdb/argent/schema"
)

// Rel is the relation cardinality of an edge.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one / has one.
	O2M            // One to many / has many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// String returns the relation name.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case O2O:
		s = "O2O"
	case O2M:
		s = "O2M"
	case M2O:
		s = "M2O"
	case M2M:
		s = "M2M"
	}
	return s
}

// Relation holds the relational placement of an edge.
type Relation struct {
	// Type holds the relation cardinality of the edge.
	Type Rel
	// Table is the table that holds the relation. For M2O and O2O it is
	// the owner's table, for O2M the target's table, and for M2M the
	// association table.
	Table string
	// Columns holds the relation column(s) in the table above. O2O, O2M
	// and M2O use one column; M2M uses two, ordered (owner_fk, target_fk).
	Columns []string
	fk      *ForeignKey
}

// Column returns the first relation column.
func (r Relation) Column() string {
	if len(r.Columns) == 0 {
		panic(fmt.Sprintf("argent/gen: missing column for relation (table=%q, type=%v)", r.Table, r.Type))
	}
	return r.Columns[0]
}

// ForeignKey holds the information of a foreign-key column placed on a
// model's table for a non-M2M edge.
type ForeignKey struct {
	// Field is the column-backed field holding the key value.
	Field *Field
	// Edge is the relationship realized by this foreign-key.
	Edge *Edge
	// OnDeleteCascade reports whether deleting the referenced row
	// cascades to this row. Restrict otherwise.
	OnDeleteCascade bool
}

// Edge is a relationship slot between two models.
type Edge struct {
	def *schema.Schema
	// Name is the property name holding the relationship on the owner.
	Name string
	// Type is the model the edge points to.
	Type *Type
	// Owner is the model declaring the edge. Back-reference edges are
	// owned by the relationship target.
	Owner *Type
	// Unique reports whether the edge holds at most one value.
	Unique bool
	// Optional reports whether the edge may be absent.
	Optional bool
	// Inverse holds the name of the edge this one was generated as the
	// back-reference of. Empty for declared edges.
	Inverse string
	// Ref points to the opposite edge: for a declared edge, its generated
	// back-reference; for a back-reference, the declared edge.
	Ref *Edge
	// Rel holds the relational placement.
	Rel Relation
	// CascadeDelete reports whether removing the owner removes the
	// dependent rows. Only exclusively-owned relationships cascade.
	CascadeDelete bool
	// ReadOnly and WriteOnly mirror the conversion semantics of the
	// underlying property.
	ReadOnly  bool
	WriteOnly bool
}

// M2M reports whether the edge is a many-to-many edge.
func (e Edge) M2M() bool { return e.Rel.Type == M2M }

// M2O reports whether the edge is a many-to-one edge.
func (e Edge) M2O() bool { return e.Rel.Type == M2O }

// O2M reports whether the edge is a one-to-many edge.
func (e Edge) O2M() bool { return e.Rel.Type == O2M }

// O2O reports whether the edge is a one-to-one edge.
func (e Edge) O2O() bool { return e.Rel.Type == O2O }

// IsInverse reports whether the edge is a generated back-reference.
func (e Edge) IsInverse() bool { return e.Inverse != "" }

// Collection reports whether the edge holds many values.
func (e Edge) Collection() bool { return !e.Unique }

// Label returns the label of the edge (owner_edgename format).
func (e Edge) Label() string {
	return fmt.Sprintf("%s_%s", e.Owner.Label(), snake(e.Name))
}

// OwnFK reports whether the foreign-key column of this edge resides in the
// owner's table.
func (e Edge) OwnFK() bool {
	switch {
	case e.M2O():
		return true
	case e.O2O() && !e.IsInverse():
		return true
	}
	return false
}

// ForeignKey returns the foreign-key realizing this edge. M2M edges carry
// their keys on the association table and have none.
func (e *Edge) ForeignKey() (*ForeignKey, error) {
	if e.Rel.fk != nil {
		return e.Rel.fk, nil
	}
	return nil, fmt.Errorf("argent/gen: foreign-key was not found for edge %q of type %s", e.Name, e.Rel.Type)
}

// StructField returns the exported member name of the edge.
func (e Edge) StructField() string { return pascal(e.Name) }

// Constant returns the constant-style name of the edge.
func (e Edge) Constant() string { return "Edge" + pascal(e.Name) }

// TableConstant returns the constant-style name of the relation table.
func (e Edge) TableConstant() string { return pascal(e.Name) + "Table" }
