package model

import (
	"fmt"

	"github.com/argentdb/argent/compiler/gen"
)

// Instance is a runtime value conforming to a model definition: a mapping
// from field name to scalar value plus references to related instances. It
// is a plain data value with no shared mutable state.
type Instance struct {
	model  *gen.Type
	fields map[string]any
	edges  map[string]any // *Instance for unique edges, []*Instance otherwise
}

// New returns an empty instance of the given model.
func New(model *gen.Type) *Instance {
	return &Instance{
		model:  model,
		fields: make(map[string]any),
		edges:  make(map[string]any),
	}
}

// Model returns the instance's model definition.
func (i *Instance) Model() *gen.Type { return i.model }

// Field returns the value of the named scalar field and whether it is set.
func (i *Instance) Field(name string) (any, bool) {
	v, ok := i.fields[name]
	return v, ok
}

// SetField sets a scalar field after validating the value against the
// field's schema. The name may also address a foreign-key column.
func (i *Instance) SetField(name string, value any) error {
	f := fieldByName(i.model, name)
	if f == nil {
		return fmt.Errorf("model: %s has no scalar field %q", i.model.Name, name)
	}
	v, err := validateValue(i.model.Name, name, f, value)
	if err != nil {
		return err
	}
	i.fields[name] = v
	return nil
}

// Edge returns the related value of the named relationship slot: an
// *Instance for unique edges, a []*Instance for collections.
func (i *Instance) Edge(name string) (any, bool) {
	v, ok := i.edges[name]
	return v, ok
}

// Related returns the single related instance of a unique edge, or nil.
func (i *Instance) Related(name string) *Instance {
	if v, ok := i.edges[name].(*Instance); ok {
		return v
	}
	return nil
}

// RelatedList returns the related instances of a collection edge.
func (i *Instance) RelatedList(name string) []*Instance {
	if v, ok := i.edges[name].([]*Instance); ok {
		return v
	}
	return nil
}

// SetEdge sets a relationship slot. Unique edges take exactly one related
// instance, collections take any number.
func (i *Instance) SetEdge(name string, related ...*Instance) error {
	e := i.model.EdgeByName(name)
	if e == nil {
		return fmt.Errorf("model: %s has no relationship %q", i.model.Name, name)
	}
	for _, rel := range related {
		if rel.model != e.Type && rel.model.Root() != e.Type {
			return fmt.Errorf("model: relationship %q of %s expects %s, got %s",
				name, i.model.Name, e.Type.Name, rel.model.Name)
		}
	}
	if e.Unique {
		if len(related) != 1 {
			return fmt.Errorf("model: relationship %q of %s holds exactly one instance", name, i.model.Name)
		}
		i.edges[name] = related[0]
		return nil
	}
	i.edges[name] = append([]*Instance(nil), related...)
	return nil
}

// PK returns the primary-key value, if set.
func (i *Instance) PK() (any, bool) {
	pk := i.model.PK()
	if pk == nil {
		return nil, false
	}
	v, ok := i.fields[pk.Name]
	return v, ok
}

// fieldByName resolves a scalar field or foreign-key column, consulting
// the model's parents.
func fieldByName(typ *gen.Type, name string) *gen.Field {
	if f := typ.FieldByName(name); f != nil {
		return f
	}
	for t := typ; t != nil; t = t.Parent {
		for _, fk := range t.ForeignKeys {
			if fk.Field.Name == name {
				return fk.Field
			}
		}
	}
	return nil
}
