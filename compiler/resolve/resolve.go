// Package resolve implements schema graph resolution: dereferencing $ref
// tokens, flattening allOf composition and rewriting relationship-typed
// properties into lazy, by-name links.
//
// Resolution is a one-time, single-threaded step. Input documents are never
// mutated; the resolver works on clones. After a successful Resolve call
// every returned schema is flat: no $ref, no allOf. Properties whose target
// is itself a modeled schema are replaced with a dereference stub that
// records the target's name, which the model registry resolves lazily. This
// is what keeps mutual references (owner has many pets, pet belongs to an
// owner) legal while genuinely circular composition chains are rejected.
package resolve

import (
	"sort"
	"strings"

	"github.com/argentdb/argent/schema"
)

// refPrefix is the pointer prefix accepted in addition to bare schema names.
const refPrefix = "#/components/schemas/"

// RefName extracts the schema name from a reference token.
func RefName(ref string) string {
	return strings.TrimPrefix(ref, refPrefix)
}

// Resolve dereferences and flattens the given schema set. The returned
// mapping contains a resolved entry for every input entry. On failure no
// partial result is returned.
func Resolve(schemas schema.Schemas) (schema.Schemas, error) {
	r := &resolver{
		src:    schemas,
		done:   make(schema.Schemas, len(schemas)),
		inPath: make(map[string]bool),
	}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	// Deterministic resolution order.
	sort.Strings(names)
	for _, name := range names {
		if err := schemas[name].ValidateExt(name); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if _, err := r.named(name); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

type resolver struct {
	src  schema.Schemas
	done schema.Schemas
	// path tracks the in-progress inline-resolution chain, used both for
	// cycle detection and for diagnostics.
	path   []string
	inPath map[string]bool
}

// named resolves the named top-level schema, memoizing the result.
func (r *resolver) named(name string) (*schema.Schema, error) {
	if s, ok := r.done[name]; ok {
		return s, nil
	}
	raw, ok := r.src[name]
	if !ok {
		owner := name
		if n := len(r.path); n > 0 {
			owner = r.path[n-1]
		}
		return nil, NewUnresolvedReferenceError(owner, name)
	}
	if r.inPath[name] {
		return nil, NewCircularReferenceError(name, append([]string(nil), r.path...))
	}
	r.push(name)
	defer r.pop(name)
	resolved, err := r.schema(name, raw.Clone())
	if err != nil {
		return nil, err
	}
	r.done[name] = resolved
	return resolved, nil
}

func (r *resolver) push(name string) {
	r.path = append(r.path, name)
	r.inPath[name] = true
}

func (r *resolver) pop(name string) {
	r.path = r.path[:len(r.path)-1]
	delete(r.inPath, name)
}

// schema resolves a single (already cloned) schema node.
func (r *resolver) schema(name string, s *schema.Schema) (*schema.Schema, error) {
	if s.IsRef() {
		target, err := r.named(RefName(s.Ref))
		if err != nil {
			return nil, err
		}
		return target.Clone(), nil
	}
	if s.IsComposed() {
		merged, err := r.merge(name, s)
		if err != nil {
			return nil, err
		}
		s = merged
	}
	for _, prop := range s.Properties {
		resolved, err := r.property(name, prop.Name, prop.Schema)
		if err != nil {
			return nil, err
		}
		prop.Schema = resolved
	}
	return s, nil
}

// property resolves an object property. References to modeled schemas become
// dereference stubs; references to plain value schemas are inlined.
func (r *resolver) property(owner, name string, ps *schema.Schema) (*schema.Schema, error) {
	switch {
	case ps.IsRef():
		target := RefName(ps.Ref)
		if r.modeledRaw(target, nil) {
			return stub(target, nil), nil
		}
		resolved, err := r.named(target)
		if err != nil {
			return nil, err
		}
		return resolved.Clone(), nil
	case ps.IsComposed():
		return r.propertyAllOf(owner, name, ps)
	case ps.IsArray() && ps.Items != nil:
		items, err := r.property(owner, name+".items", ps.Items)
		if err != nil {
			return nil, err
		}
		out := ps.Clone()
		out.Items = items
		// Back-reference and cascade metadata may sit on either the
		// array property or its items; normalize onto the property.
		if out.Backref == "" {
			out.Backref = items.Backref
		}
		if out.Secondary == "" {
			out.Secondary = items.Secondary
		}
		out.CascadeDelete = out.CascadeDelete || items.CascadeDelete
		return out, nil
	case ps.IsObject() && len(ps.Properties) > 0:
		out := ps.Clone()
		for _, prop := range out.Properties {
			resolved, err := r.property(owner, name+"."+prop.Name, prop.Schema)
			if err != nil {
				return nil, err
			}
			prop.Schema = resolved
		}
		return out, nil
	}
	return ps, nil
}

// propertyAllOf resolves a property carrying an allOf list. The common case
// is a reference to a modeled schema wrapped together with relationship
// metadata, which cannot sit next to a $ref directly:
//
//	owner:
//	  allOf:
//	    - $ref: '#/components/schemas/Owner'
//	    - x-backref: pets
func (r *resolver) propertyAllOf(owner, name string, ps *schema.Schema) (*schema.Schema, error) {
	var (
		target string
		ext    *schema.Schema
	)
	for _, m := range ps.AllOf {
		if m.IsRef() {
			t := RefName(m.Ref)
			if r.modeledRaw(t, nil) {
				if target != "" && target != t {
					return nil, NewIncompatibleMergeError(owner, name, "property references two modeled schemas")
				}
				target = t
				continue
			}
		}
		if ext == nil {
			ext = &schema.Schema{}
		}
		mergeExt(ext, m)
	}
	if target != "" {
		return stub(target, ext), nil
	}
	// Plain value composition on a property: merge then resolve.
	merged, err := r.merge(owner+"."+name, ps)
	if err != nil {
		return nil, err
	}
	return r.property(owner, name, merged)
}

// stub builds the lazy dereference node for a relationship property.
func stub(target string, ext *schema.Schema) *schema.Schema {
	s := &schema.Schema{Type: "object", DeRef: target}
	if ext != nil {
		s.Backref = ext.Backref
		s.Secondary = ext.Secondary
		s.UseList = ext.UseList
		s.CascadeDelete = ext.CascadeDelete
		s.ReadOnly = ext.ReadOnly
		s.WriteOnly = ext.WriteOnly
		s.Description = ext.Description
	}
	return s
}

// mergeExt folds the relationship metadata of m into dst.
func mergeExt(dst, m *schema.Schema) {
	if m.Backref != "" {
		dst.Backref = m.Backref
	}
	if m.Secondary != "" {
		dst.Secondary = m.Secondary
	}
	if m.UseList != nil {
		dst.UseList = m.UseList
	}
	dst.CascadeDelete = dst.CascadeDelete || m.CascadeDelete
	dst.ReadOnly = dst.ReadOnly || m.ReadOnly
	dst.WriteOnly = dst.WriteOnly || m.WriteOnly
	if m.Description != "" {
		dst.Description = m.Description
	}
}

// modeledRaw reports whether the named raw schema is a modeled entity: it
// declares a table identity directly, through a reference or through a
// composition member. It peeks at raw input only and never resolves.
func (r *resolver) modeledRaw(name string, seen map[string]bool) bool {
	raw, ok := r.src[name]
	if !ok {
		return false
	}
	if raw.Tablename != "" {
		return true
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[name] {
		return false
	}
	seen[name] = true
	if raw.IsRef() {
		return r.modeledRaw(RefName(raw.Ref), seen)
	}
	for _, m := range raw.AllOf {
		if m.Tablename != "" {
			return true
		}
		if m.IsRef() && r.modeledRaw(RefName(m.Ref), seen) {
			return true
		}
	}
	return false
}
