package gen

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a compact, serializable view of a compiled graph. It carries
// everything a consumer needs to reason about the relational layout
// without re-running compilation, and is what the CLI persists between
// runs to detect drift between a schema document and its compiled form.
type Snapshot struct {
	Models []*ModelSnapshot `msgpack:"models"`
}

// ModelSnapshot is the serialized form of a compiled model.
type ModelSnapshot struct {
	Name        string           `msgpack:"name"`
	Table       string           `msgpack:"table"`
	Parent      string           `msgpack:"parent,omitempty"`
	Inheritance string           `msgpack:"inheritance,omitempty"`
	Fields      []*FieldSnapshot `msgpack:"fields"`
	Edges       []*EdgeSnapshot  `msgpack:"edges,omitempty"`
}

// FieldSnapshot is the serialized form of a column-backed field.
type FieldSnapshot struct {
	Name          string   `msgpack:"name"`
	Type          string   `msgpack:"type"`
	Nullable      bool     `msgpack:"nullable,omitempty"`
	PrimaryKey    bool     `msgpack:"primary_key,omitempty"`
	AutoIncrement bool     `msgpack:"auto_increment,omitempty"`
	Unique        bool     `msgpack:"unique,omitempty"`
	Indexed       bool     `msgpack:"indexed,omitempty"`
	ReadOnly      bool     `msgpack:"read_only,omitempty"`
	WriteOnly     bool     `msgpack:"write_only,omitempty"`
	Size          *int     `msgpack:"size,omitempty"`
	Enums         []any    `msgpack:"enums,omitempty"`
	Default       any      `msgpack:"default,omitempty"`
	ForeignKey    string   `msgpack:"foreign_key,omitempty"`
	OnDelete      string   `msgpack:"on_delete,omitempty"`
	Pattern       string   `msgpack:"pattern,omitempty"`
	Minimum       *float64 `msgpack:"minimum,omitempty"`
	Maximum       *float64 `msgpack:"maximum,omitempty"`
}

// EdgeSnapshot is the serialized form of a relationship slot.
type EdgeSnapshot struct {
	Name     string   `msgpack:"name"`
	Target   string   `msgpack:"target"`
	Rel      string   `msgpack:"rel"`
	Table    string   `msgpack:"table"`
	Columns  []string `msgpack:"columns"`
	Inverse  string   `msgpack:"inverse,omitempty"`
	Optional bool     `msgpack:"optional,omitempty"`
	Cascade  bool     `msgpack:"cascade,omitempty"`
}

// Snapshot captures the compiled graph.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{Models: make([]*ModelSnapshot, 0, len(g.Nodes))}
	for _, typ := range g.Nodes {
		snap.Models = append(snap.Models, snapshotModel(typ))
	}
	return snap
}

func snapshotModel(typ *Type) *ModelSnapshot {
	m := &ModelSnapshot{
		Name:  typ.Name,
		Table: typ.Table(),
	}
	if typ.Parent != nil {
		m.Parent = typ.Parent.Name
		m.Inheritance = typ.Inheritance.String()
	}
	if typ.ID != nil {
		m.Fields = append(m.Fields, snapshotField(typ.ID))
	}
	for _, f := range typ.Fields {
		m.Fields = append(m.Fields, snapshotField(f))
	}
	if typ.Discriminator != nil {
		m.Fields = append(m.Fields, snapshotField(typ.Discriminator))
	}
	for _, fk := range typ.ForeignKeys {
		fs := snapshotField(fk.Field)
		fs.ForeignKey = fk.Edge.Type.Table() + "." + fk.Edge.Type.PK().Name
		if fk.Edge.O2M() {
			fs.ForeignKey = fk.Edge.Owner.Table() + "." + fk.Edge.Owner.PK().Name
		}
		if fk.OnDeleteCascade {
			fs.OnDelete = "cascade"
		}
		m.Fields = append(m.Fields, fs)
	}
	for _, e := range typ.Edges {
		m.Edges = append(m.Edges, &EdgeSnapshot{
			Name:     e.Name,
			Target:   e.Type.Name,
			Rel:      e.Rel.Type.String(),
			Table:    e.Rel.Table,
			Columns:  e.Rel.Columns,
			Inverse:  e.Inverse,
			Optional: e.Optional,
			Cascade:  e.CascadeDelete,
		})
	}
	return m
}

func snapshotField(f *Field) *FieldSnapshot {
	return &FieldSnapshot{
		Name:          f.Name,
		Type:          f.Type.String(),
		Nullable:      f.Nillable,
		PrimaryKey:    f.PrimaryKey,
		AutoIncrement: f.AutoIncrement,
		Unique:        f.Unique,
		Indexed:       f.Indexed,
		ReadOnly:      f.ReadOnly,
		WriteOnly:     f.WriteOnly,
		Size:          f.Size,
		Enums:         f.Enums,
		Default:       f.Default,
		Pattern:       f.Pattern,
		Minimum:       f.Minimum,
		Maximum:       f.Maximum,
	}
}

// MarshalBinary encodes the snapshot.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(s)
}

// UnmarshalBinary decodes a snapshot produced by MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, s)
}
