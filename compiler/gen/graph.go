package gen

import (
	"fmt"
	"reflect"

	"github.com/argentdb/argent/schema"
)

// Graph is the compiled model registry: every modeled schema of a document
// set as a Type node, with edges wired between them and table identities
// checked for uniqueness. A graph is immutable after NewGraph returns.
type Graph struct {
	*Config
	// Nodes holds the compiled models in deterministic (sorted name)
	// order.
	Nodes []*Type
	nodes map[string]*Type
	// schemas holds the resolved source schemas, including plain
	// (non-modeled) definitions.
	schemas schema.Schemas
}

// NewGraph compiles resolved schemas into a model graph. The input must be
// the output of the resolver; raw documents with unresolved references or
// unmerged compositions are not accepted. Compilation is all-or-nothing:
// any error leaves no partial registry behind.
func NewGraph(cfg *Config, schemas schema.Schemas) (*Graph, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	g := &Graph{
		Config:  cfg,
		nodes:   make(map[string]*Type),
		schemas: schemas,
	}
	for _, name := range sortedNames(schemas) {
		s := schemas[name]
		if !s.Modeled() {
			continue
		}
		typ, err := NewType(cfg, name, s, g.ownProps(s))
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, typ)
		g.nodes[name] = typ
	}
	if err := g.linkInheritance(); err != nil {
		return nil, err
	}
	if err := g.addEdges(); err != nil {
		return nil, err
	}
	if err := g.resolveFKs(); err != nil {
		return nil, err
	}
	if err := g.checkTables(); err != nil {
		return nil, err
	}
	return g, nil
}

// ownProps returns the properties a schema declares itself, excluding the
// ones merged in unchanged from its parent chain. A property redefined by
// the child (an override, e.g. a tightened maxLength) stays with the child
// so its definition shadows the parent's.
func (g *Graph) ownProps(s *schema.Schema) schema.Properties {
	if s.Inherits == "" {
		return s.Properties
	}
	parent, ok := g.schemas[s.Inherits]
	if !ok {
		return s.Properties
	}
	own := make(schema.Properties, 0, len(s.Properties))
	for _, prop := range s.Properties {
		base := parent.Properties.Get(prop.Name)
		if base == nil || !reflect.DeepEqual(base, prop.Schema) {
			own = append(own, prop)
		}
	}
	return own
}

// Type returns the named model, or nil.
func (g *Graph) Type(name string) *Type { return g.nodes[name] }

// linkInheritance wires parent pointers and inheritance strategies.
// A child with its own table identity gets joined-table inheritance: its
// primary key mirrors the root's and doubles as a foreign key to the
// parent. A child without one shares the parent's table, and the
// table-owning root grows a discriminator column.
func (g *Graph) linkInheritance() error {
	for _, typ := range g.Nodes {
		base := typ.schema.Inherits
		if base == "" {
			continue
		}
		parent, ok := g.nodes[base]
		if !ok {
			return fmt.Errorf("argent/gen: model %s inherits unknown model %q", typ.Name, base)
		}
		typ.Parent = parent
		if typ.tablename == "" {
			typ.Inheritance = InheritSingleTable
			continue
		}
		typ.Inheritance = InheritJoinedTable
	}
	for _, typ := range g.Nodes {
		switch typ.Inheritance {
		case InheritSingleTable:
			root := typ.Root()
			if root.Discriminator == nil {
				root.Discriminator = &Field{
					typ:      root,
					Name:     g.Discriminator,
					Type:     TypeString,
					ReadOnly: true,
					def:      &schema.Schema{Type: "string", ReadOnly: true},
				}
			}
		case InheritJoinedTable:
			pk := typ.Parent.PK()
			if pk == nil {
				return NewMissingPrimaryKeyError(typ.Parent.Name)
			}
			typ.ID = &Field{
				typ:        typ,
				Name:       pk.Name,
				Type:       pk.Type,
				PrimaryKey: true,
				ReadOnly:   pk.ReadOnly,
				def:        pk.def,
			}
		}
	}
	return nil
}

// addEdges walks every model's own relationship properties and wires the
// edges between the nodes, generating back-references as it goes.
func (g *Graph) addEdges() error {
	for _, typ := range g.Nodes {
		for _, prop := range typ.ownProps {
			ps := prop.Schema
			switch {
			case ps.DeRef != "":
				if err := g.addToOne(typ, prop.Name, ps); err != nil {
					return err
				}
			case ps.IsArray() && ps.Items != nil && ps.Items.DeRef != "":
				if err := g.addToMany(typ, prop.Name, ps); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addToOne wires an object-valued relationship property. The referencing
// side owns the foreign key. Default cardinality is many-to-one; an
// explicit "uselist: false" narrows it to one-to-one.
func (g *Graph) addToOne(owner *Type, name string, ps *schema.Schema) error {
	target, ok := g.nodes[ps.DeRef]
	if !ok {
		return fmt.Errorf("argent/gen: model %s: property %s references unknown model %q", owner.Name, name, ps.DeRef)
	}
	o2o := ps.UseList != nil && !*ps.UseList
	e := &Edge{
		def:           ps,
		Name:          name,
		Type:          target,
		Owner:         owner,
		Unique:        true,
		Optional:      !owner.schema.RequiredSet(name),
		CascadeDelete: ps.CascadeDelete,
		ReadOnly:      ps.ReadOnly,
		WriteOnly:     ps.WriteOnly,
	}
	if o2o {
		e.Rel.Type = O2O
	} else {
		e.Rel.Type = M2O
	}
	if err := owner.addEdge(e); err != nil {
		return err
	}
	ref := &Edge{
		def:      ps,
		Name:     g.backrefName(owner, name, ps),
		Type:     owner,
		Owner:    target,
		Unique:   o2o,
		Optional: true,
		Inverse:  name,
		Ref:      e,
	}
	if o2o {
		ref.Rel.Type = O2O
	} else {
		ref.Rel.Type = O2M
	}
	e.Ref = ref
	return target.addEdge(ref)
}

// addToMany wires an array-valued relationship property. The target holds
// the foreign key (one-to-many), unless the target declares a reciprocal
// array back to the owner or the property names an association table, in
// which case the pair is many-to-many.
func (g *Graph) addToMany(owner *Type, name string, ps *schema.Schema) error {
	target, ok := g.nodes[ps.Items.DeRef]
	if !ok {
		return fmt.Errorf("argent/gen: model %s: property %s references unknown model %q", owner.Name, name, ps.Items.DeRef)
	}
	reciprocal := g.reciprocalProp(target, owner, name)
	if ps.Secondary != "" || reciprocal != nil {
		return g.addM2M(owner, name, ps, target, reciprocal)
	}
	e := &Edge{
		def:           ps,
		Name:          name,
		Type:          target,
		Owner:         owner,
		Optional:      !owner.schema.RequiredSet(name),
		CascadeDelete: ps.CascadeDelete,
		ReadOnly:      ps.ReadOnly,
		WriteOnly:     ps.WriteOnly,
	}
	e.Rel.Type = O2M
	if err := owner.addEdge(e); err != nil {
		return err
	}
	ref := &Edge{
		def:      ps,
		Name:     g.backrefName(owner, name, ps),
		Type:     owner,
		Owner:    target,
		Unique:   true,
		Optional: true,
		Inverse:  name,
		Ref:      e,
	}
	ref.Rel.Type = M2O
	e.Ref = ref
	return target.addEdge(ref)
}

// addM2M wires one side of a many-to-many relationship. When both sides
// declare arrays, the side processed second attaches itself as the inverse
// of the already-built edge; otherwise a back-reference collection is
// generated on the target.
func (g *Graph) addM2M(owner *Type, name string, ps *schema.Schema, target *Type, reciprocal *schema.Property) error {
	if ps.CascadeDelete {
		return schema.NewExtensionError(owner.Name, name, "x-cascade-delete",
			"cascade delete cannot apply to a many-to-many relationship")
	}
	// The first-processed side may have already created the pair.
	if prior := g.pendingM2M(owner, target, reciprocal); prior != nil {
		if ps.Secondary != "" && ps.Secondary != prior.Rel.Table {
			return schema.NewExtensionError(owner.Name, name, "x-secondary",
				fmt.Sprintf("association table %q disagrees with %s.%s (%q)",
					ps.Secondary, target.Name, prior.Name, prior.Rel.Table))
		}
		e := &Edge{
			def:       ps,
			Name:      name,
			Type:      target,
			Owner:     owner,
			Optional:  true,
			Inverse:   prior.Name,
			Ref:       prior,
			ReadOnly:  ps.ReadOnly,
			WriteOnly: ps.WriteOnly,
		}
		e.Rel.Type = M2M
		e.Rel.Table = prior.Rel.Table
		prior.Ref = e
		return owner.addEdge(e)
	}
	table := ps.Secondary
	if table == "" {
		table = canonicalPair(owner.Table(), target.Table())
	}
	e := &Edge{
		def:       ps,
		Name:      name,
		Type:      target,
		Owner:     owner,
		Optional:  true,
		ReadOnly:  ps.ReadOnly,
		WriteOnly: ps.WriteOnly,
	}
	e.Rel.Type = M2M
	e.Rel.Table = table
	if err := owner.addEdge(e); err != nil {
		return err
	}
	if reciprocal != nil {
		// The reciprocal property builds the inverse when its side is
		// processed.
		return nil
	}
	ref := &Edge{
		def:      ps,
		Name:     g.backrefName(owner, name, ps),
		Type:     owner,
		Owner:    target,
		Optional: true,
		Inverse:  name,
		Ref:      e,
	}
	ref.Rel.Type = M2M
	ref.Rel.Table = table
	e.Ref = ref
	return target.addEdge(ref)
}

// reciprocalProp returns the target's own array property pointing back at
// the owner, if one exists. A property never pairs with itself.
func (g *Graph) reciprocalProp(target, owner *Type, name string) *schema.Property {
	for _, prop := range target.ownProps {
		ps := prop.Schema
		if !ps.IsArray() || ps.Items == nil || ps.Items.DeRef != owner.Name {
			continue
		}
		if target == owner && prop.Name == name {
			continue
		}
		return prop
	}
	return nil
}

// pendingM2M returns the already-built, still unpaired M2M edge on the
// target whose reciprocal property is the one being processed.
func (g *Graph) pendingM2M(owner, target *Type, reciprocal *schema.Property) *Edge {
	if reciprocal == nil {
		return nil
	}
	for _, e := range target.Edges {
		if e.M2M() && e.Type == owner && e.Ref == nil && e.Name == reciprocal.Name {
			return e
		}
	}
	return nil
}

// backrefName returns the back-reference name for a relationship property:
// the explicit override when given, otherwise a deterministic name derived
// from the owner and the referencing property.
func (g *Graph) backrefName(owner *Type, prop string, ps *schema.Schema) string {
	if ps.Backref != "" {
		return ps.Backref
	}
	return snake(owner.Name) + "_" + snake(prop)
}

// resolveFKs materializes the foreign-key columns of every non-M2M edge
// and fills in the relation placement of all edges.
func (g *Graph) resolveFKs() error {
	for _, typ := range g.Nodes {
		for _, e := range typ.Edges {
			if e.IsInverse() {
				continue
			}
			switch e.Rel.Type {
			case M2O, O2O:
				pk := e.Type.PK()
				if pk == nil {
					return NewMissingPrimaryKeyError(e.Type.Name)
				}
				col := snake(e.Name) + "_" + pk.Name
				f := &Field{
					typ:      typ,
					Name:     col,
					Type:     pk.Type,
					Nillable: e.Optional,
					Unique:   e.O2O(),
					def:      pk.def,
				}
				fk := &ForeignKey{Field: f, Edge: e, OnDeleteCascade: e.CascadeDelete}
				typ.addFK(fk)
				e.setRelation(typ.Table(), fk, col)
			case O2M:
				pk := typ.PK()
				if pk == nil {
					return NewMissingPrimaryKeyError(typ.Name)
				}
				col := singular(typ.Table()) + "_" + pk.Name
				f := &Field{
					typ:      e.Type,
					Name:     col,
					Type:     pk.Type,
					Nillable: true,
					def:      pk.def,
				}
				fk := &ForeignKey{Field: f, Edge: e, OnDeleteCascade: e.CascadeDelete}
				e.Type.addFK(fk)
				e.setRelation(e.Type.Table(), fk, col)
			case M2M:
				ownerPK, targetPK := typ.PK(), e.Type.PK()
				if ownerPK == nil {
					return NewMissingPrimaryKeyError(typ.Name)
				}
				if targetPK == nil {
					return NewMissingPrimaryKeyError(e.Type.Name)
				}
				c1 := singular(typ.Table()) + "_" + ownerPK.Name
				c2 := singular(e.Type.Table()) + "_" + targetPK.Name
				if c1 == c2 {
					c2 = "rev_" + c2
				}
				e.Rel.Columns = []string{c1, c2}
				if e.Ref != nil {
					e.Ref.Rel.Table = e.Rel.Table
					e.Ref.Rel.Columns = []string{c2, c1}
				}
			}
		}
	}
	return nil
}

// setRelation records the table and column realizing a foreign-key edge on
// both the edge and its back-reference.
func (e *Edge) setRelation(table string, fk *ForeignKey, column string) {
	e.Rel.Table = table
	e.Rel.Columns = []string{column}
	e.Rel.fk = fk
	if e.Ref != nil {
		e.Ref.Rel.Table = table
		e.Ref.Rel.Columns = []string{column}
		e.Ref.Rel.fk = fk
	}
}

// checkTables verifies that every model maps to a distinct table.
// Single-table inheritance children share their parent's table on purpose
// and are exempt. Association tables participate in the check.
func (g *Graph) checkTables() error {
	tables := make(map[string]*Type)
	for _, typ := range g.Nodes {
		if typ.Inheritance == InheritSingleTable {
			continue
		}
		table := typ.Table()
		if first, ok := tables[table]; ok {
			return NewDuplicateModelError(table, typ.Name, first.Name)
		}
		tables[table] = typ
	}
	for _, typ := range g.Nodes {
		for _, e := range typ.Edges {
			if !e.M2M() || e.IsInverse() {
				continue
			}
			if first, ok := tables[e.Rel.Table]; ok {
				return NewDuplicateModelError(e.Rel.Table, typ.Name, first.Name)
			}
			tables[e.Rel.Table] = typ
		}
	}
	return nil
}
