package resolve

import (
	"github.com/argentdb/argent/schema"
)

// merge flattens an allOf composition left-to-right into one effective
// schema. A member that is itself a modeled schema acts as the inheritance
// base: it must be the first member, its properties come first in the merged
// output and its name is recorded on the result. The merged schema's own
// table identity reflects only what the non-base members declare, which is
// what distinguishes joined-table children (own identity) from single-table
// children (none).
func (r *resolver) merge(name string, s *schema.Schema) (*schema.Schema, error) {
	members := append([]*schema.Schema(nil), s.AllOf...)
	// The schema's sibling attributes participate as a trailing member.
	own := s.Clone()
	own.AllOf = nil
	if !emptySchema(own) {
		members = append(members, own)
	}

	out := &schema.Schema{Type: "object"}
	for i, m := range members {
		eff := m
		if m.IsRef() {
			target := RefName(m.Ref)
			if r.modeledRaw(target, nil) {
				if i != 0 {
					return nil, NewIncompatibleMergeError(name, "", "modeled base member must be the first composition member")
				}
				parent, err := r.named(target)
				if err != nil {
					return nil, err
				}
				if err := mergeMember(out, parent, name); err != nil {
					return nil, err
				}
				// The base contributes identity through inheritance,
				// never as the child's own tablename. A resolved base
				// carries its own parent; the child's direct parent wins.
				out.Inherits = target
				out.Tablename = ""
				continue
			}
			resolved, err := r.named(target)
			if err != nil {
				return nil, err
			}
			eff = resolved
		} else if m.IsComposed() {
			merged, err := r.merge(name, m)
			if err != nil {
				return nil, err
			}
			if merged.Inherits != "" {
				return nil, NewIncompatibleMergeError(name, "", "nested composition cannot introduce a base member")
			}
			eff = merged
		}
		if err := mergeMember(out, eff, name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeMember folds the member m into dst, checking property compatibility.
func mergeMember(dst, m *schema.Schema, name string) error {
	if m.Type != "" {
		if dst.Type != "" && dst.Type != m.Type && dst.Type != "object" {
			return NewIncompatibleMergeError(name, "", "composition members disagree on type")
		}
		if dst.Type == "" {
			dst.Type = m.Type
		}
	}
	if m.Format != "" {
		dst.Format = m.Format
	}
	for _, prop := range m.Properties {
		existing := dst.Properties.Get(prop.Name)
		if existing == nil {
			dst.Properties = append(dst.Properties, &schema.Property{
				Name:   prop.Name,
				Schema: prop.Schema.Clone(),
			})
			continue
		}
		if !compatible(existing, prop.Schema) {
			return NewIncompatibleMergeError(name, prop.Name, "composition members declare structurally different definitions")
		}
		// Later members override, first-seen position is kept.
		for _, dp := range dst.Properties {
			if dp.Name == prop.Name {
				dp.Schema = prop.Schema.Clone()
				break
			}
		}
	}
	for _, req := range m.Required {
		if !dst.RequiredSet(req) {
			dst.Required = append(dst.Required, req)
		}
	}
	if m.Tablename != "" {
		dst.Tablename = m.Tablename
	}
	if m.Inherits != "" {
		dst.Inherits = m.Inherits
	}
	dst.AutoID = dst.AutoID || m.AutoID
	dst.AutoIncrement = dst.AutoIncrement || m.AutoIncrement
	dst.PrimaryKey = dst.PrimaryKey || m.PrimaryKey
	dst.Unique = dst.Unique || m.Unique
	dst.Index = dst.Index || m.Index
	if m.Enum != nil {
		dst.Enum = append([]any(nil), m.Enum...)
	}
	if m.MaxLength != nil {
		v := *m.MaxLength
		dst.MaxLength = &v
	}
	if m.Minimum != nil {
		v := *m.Minimum
		dst.Minimum = &v
	}
	if m.Maximum != nil {
		v := *m.Maximum
		dst.Maximum = &v
	}
	if m.Pattern != "" {
		dst.Pattern = m.Pattern
	}
	if m.Default != nil {
		dst.Default = m.Default
	}
	if m.Description != "" {
		dst.Description = m.Description
	}
	mergeExt(dst, m)
	return nil
}

// compatible reports whether two property definitions are structurally
// compatible for merging: same reference target, or same type/format pair.
func compatible(a, b *schema.Schema) bool {
	switch {
	case a.IsRef() || b.IsRef():
		return a.IsRef() && b.IsRef() && RefName(a.Ref) == RefName(b.Ref)
	case a.DeRef != "" || b.DeRef != "":
		return a.DeRef == b.DeRef
	default:
		return a.Type == b.Type && a.Format == b.Format
	}
}

// emptySchema reports whether the schema carries no significant attributes,
// i.e. it was only a container for an allOf list.
func emptySchema(s *schema.Schema) bool {
	return s.Type == "" && s.Format == "" && len(s.Properties) == 0 &&
		len(s.Required) == 0 && s.Items == nil && s.Enum == nil &&
		s.Tablename == "" && s.Inherits == "" && !s.AutoID && !s.AutoIncrement &&
		s.Default == nil && s.Description == ""
}
