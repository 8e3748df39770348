// Package schema defines the raw, declarative schema documents that the
// compiler consumes. The structure mirrors JSON-Schema/OpenAPI schema
// objects, extended with a small set of "x-" properties that carry the
// relational metadata (table identity, primary key, back-references and
// cascade policy) the compiler needs.
//
// A Schema is a plain data value. Property order is significant and is
// preserved through both JSON and YAML decoding, since the compiler emits
// model fields in declaration order.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schemas is a mapping from schema name to its definition, typically the
// contents of an OpenAPI components/schemas object.
type Schemas map[string]*Schema

// Schema is a single node in the schema document graph. Before resolution it
// may contain $ref tokens and allOf composition lists; after resolution it is
// flat: no references, no composition.
type Schema struct {
	// Ref holds a reference token naming another schema, either a bare
	// name or a "#/components/schemas/Name" pointer. A schema carrying a
	// reference has no other significant attributes.
	Ref string `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	// AllOf holds the composition members to merge, in order.
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`

	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Properties of an object schema, in declaration order.
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Required lists the property names that must be present.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`

	// Items describes the element schema of an array schema.
	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`

	// Scalar constraints.
	Enum      []any    `json:"enum,omitempty" yaml:"enum,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Default   any      `json:"default,omitempty" yaml:"default,omitempty"`

	ReadOnly  bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	WriteOnly bool `json:"writeOnly,omitempty" yaml:"writeOnly,omitempty"`

	// Relational extension properties.

	// Tablename designates the schema as a modeled entity and names its
	// table. A schema without a tablename (and without an inherited one)
	// is a plain value schema.
	Tablename string `json:"x-tablename,omitempty" yaml:"x-tablename,omitempty"`
	// PrimaryKey marks a property as (part of) the primary key.
	PrimaryKey bool `json:"x-primary-key,omitempty" yaml:"x-primary-key,omitempty"`
	// AutoID opts the schema in to a synthesized surrogate integer key
	// when no property is marked as the primary key.
	AutoID bool `json:"x-auto-id,omitempty" yaml:"x-auto-id,omitempty"`
	// AutoIncrement marks an integer primary key as auto-incrementing.
	AutoIncrement bool `json:"x-autoincrement,omitempty" yaml:"x-autoincrement,omitempty"`
	// Backref overrides the generated back-reference name on the target
	// of a relationship property.
	Backref string `json:"x-backref,omitempty" yaml:"x-backref,omitempty"`
	// Secondary overrides the synthesized association table name of a
	// many-to-many relationship.
	Secondary string `json:"x-secondary,omitempty" yaml:"x-secondary,omitempty"`
	// UseList, when set to false on an object-valued property, turns the
	// relationship into one-to-one instead of many-to-one.
	UseList *bool `json:"x-uselist,omitempty" yaml:"x-uselist,omitempty"`
	// CascadeDelete enables delete-cascade for an exclusively owned
	// relationship. The default is restrict.
	CascadeDelete bool `json:"x-cascade-delete,omitempty" yaml:"x-cascade-delete,omitempty"`
	// Unique adds a unique constraint to the property's column.
	Unique bool `json:"x-unique,omitempty" yaml:"x-unique,omitempty"`
	// Index adds a non-unique index to the property's column.
	Index bool `json:"x-index,omitempty" yaml:"x-index,omitempty"`

	// DeRef records the name of the model a relationship property points
	// to. It is written by the resolver when it replaces an inline
	// reference with a lazy, by-name link and is not expected in input
	// documents.
	DeRef string `json:"x-de-$ref,omitempty" yaml:"x-de-$ref,omitempty"`
	// Inherits records the parent model name of a schema whose first
	// composition member was a modeled schema. Written by the resolver.
	Inherits string `json:"x-inherits,omitempty" yaml:"x-inherits,omitempty"`
}

// Property is a named member of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is an ordered list of object properties. It marshals to and
// from a JSON/YAML mapping while keeping declaration order.
type Properties []*Property

// Get returns the schema of the named property, or nil.
func (p Properties) Get(name string) *Schema {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema
		}
	}
	return nil
}

// Has reports whether the named property exists.
func (p Properties) Has(name string) bool { return p.Get(name) != nil }

// Names returns the property names in declaration order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

// UnmarshalJSON decodes a JSON object into an ordered property list.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: properties must be an object, got %v", tok)
	}
	props := make(Properties, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schema: invalid property name %v", keyTok)
		}
		s := &Schema{}
		if err := dec.Decode(s); err != nil {
			return fmt.Errorf("schema: property %q: %w", name, err)
		}
		props = append(props, &Property{Name: name, Schema: s})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = props
	return nil
}

// MarshalJSON encodes the property list as a JSON object in declaration order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, fmt.Errorf("schema: property %q: %w", prop.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping into an ordered property list.
func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: properties must be a mapping (line %d)", node.Line)
	}
	props := make(Properties, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		s := &Schema{}
		if err := node.Content[i+1].Decode(s); err != nil {
			return fmt.Errorf("schema: property %q: %w", name, err)
		}
		props = append(props, &Property{Name: name, Schema: s})
	}
	*p = props
	return nil
}

// MarshalYAML encodes the property list as a mapping in declaration order.
func (p Properties) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, prop := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: prop.Name}
		value := &yaml.Node{}
		if err := value.Encode(prop.Schema); err != nil {
			return nil, fmt.Errorf("schema: property %q: %w", prop.Name, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// IsRef reports whether the schema is a bare reference.
func (s *Schema) IsRef() bool { return s != nil && s.Ref != "" }

// IsComposed reports whether the schema carries an allOf composition list.
func (s *Schema) IsComposed() bool { return s != nil && len(s.AllOf) > 0 }

// IsObject reports whether the schema describes an object.
func (s *Schema) IsObject() bool { return s != nil && s.Type == "object" }

// IsArray reports whether the schema describes an array.
func (s *Schema) IsArray() bool { return s != nil && s.Type == "array" }

// Modeled reports whether the schema is a modeled entity: it declares a
// table identity of its own or inherits one.
func (s *Schema) Modeled() bool {
	return s != nil && (s.Tablename != "" || s.Inherits != "")
}

// RequiredSet reports whether the named property is listed as required.
func (s *Schema) RequiredSet(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the schema. The compiler clones schemas
// before rewriting them so input documents are never mutated.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.AllOf != nil {
		out.AllOf = make([]*Schema, len(s.AllOf))
		for i, m := range s.AllOf {
			out.AllOf[i] = m.Clone()
		}
	}
	if s.Properties != nil {
		out.Properties = make(Properties, len(s.Properties))
		for i, prop := range s.Properties {
			out.Properties[i] = &Property{Name: prop.Name, Schema: prop.Schema.Clone()}
		}
	}
	out.Items = s.Items.Clone()
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.MaxLength != nil {
		v := *s.MaxLength
		out.MaxLength = &v
	}
	if s.Minimum != nil {
		v := *s.Minimum
		out.Minimum = &v
	}
	if s.Maximum != nil {
		v := *s.Maximum
		out.Maximum = &v
	}
	if s.UseList != nil {
		v := *s.UseList
		out.UseList = &v
	}
	return &out
}
