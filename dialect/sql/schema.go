package sql

import (
	"fmt"
	"sort"

	"github.com/argentdb/argent/compiler/gen"
)

// Table describes one relational table derived from a compiled model graph:
// a model table, a shared inheritance table or a synthesized association
// table.
type Table struct {
	Name        string
	Columns     []*Column
	columns     map[string]*Column
	PrimaryKey  []string
	ForeignKeys []*ForeignKey
	Indexes     []*Index
}

// Column describes a table column.
type Column struct {
	Name      string
	Type      gen.ColumnType
	Size      *int
	Nullable  bool
	Unique    bool
	Increment bool
	Default   any
	Enums     []any
}

// ForeignKey describes a foreign-key constraint.
type ForeignKey struct {
	Symbol     string
	Columns    []string
	RefTable   string
	RefColumns []string
	// OnDelete is the referential action taken when the referenced row is
	// deleted: "CASCADE" or empty for the restrict default.
	OnDelete string
}

// Index describes a non-unique index on one or more columns.
type Index struct {
	Name    string
	Columns []string
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name, columns: make(map[string]*Column)}
}

// AddColumn appends a column, replacing a previous one with the same name.
func (t *Table) AddColumn(c *Column) *Table {
	if t.columns == nil {
		t.columns = make(map[string]*Column)
	}
	if _, ok := t.columns[c.Name]; !ok {
		t.Columns = append(t.Columns, c)
	}
	t.columns[c.Name] = c
	for i, existing := range t.Columns {
		if existing.Name == c.Name {
			t.Columns[i] = c
		}
	}
	return t
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	return t.columns[name]
}

// Tables derives the relational tables of a compiled graph: one table per
// model (single-table inheritance children fold into their root's table)
// plus one association table per many-to-many edge.
func Tables(g *gen.Graph) ([]*Table, error) {
	byName := make(map[string]*Table)
	var tables []*Table
	for _, typ := range g.Nodes {
		if typ.Inheritance == gen.InheritSingleTable {
			continue
		}
		table, err := modelTable(typ)
		if err != nil {
			return nil, err
		}
		byName[table.Name] = table
		tables = append(tables, table)
	}
	// Fold single-table children into the table of their root.
	for _, typ := range g.Nodes {
		if typ.Inheritance != gen.InheritSingleTable {
			continue
		}
		root := typ.Root()
		table, ok := byName[root.Table()]
		if !ok {
			return nil, fmt.Errorf("dialect/sql: missing root table %q for model %s", root.Table(), typ.Name)
		}
		for _, f := range typ.Fields {
			// A child override of an inherited property shares the
			// root's column.
			if table.Column(f.Name) != nil {
				continue
			}
			c := fieldColumn(f)
			// Rows of sibling types leave the column empty.
			c.Nullable = true
			table.AddColumn(c)
		}
		if err := addForeignKeys(table, typ); err != nil {
			return nil, err
		}
		addIndexes(table, typ)
	}
	assoc, err := assocTables(g, byName)
	if err != nil {
		return nil, err
	}
	return append(tables, assoc...), nil
}

func modelTable(typ *gen.Type) (*Table, error) {
	table := NewTable(typ.Table())
	pk := typ.PK()
	if pk == nil {
		return nil, fmt.Errorf("dialect/sql: model %s has no primary key", typ.Name)
	}
	table.AddColumn(fieldColumn(pk))
	table.PrimaryKey = []string{pk.Name}
	for _, f := range typ.Fields {
		table.AddColumn(fieldColumn(f))
	}
	if typ.Discriminator != nil {
		c := fieldColumn(typ.Discriminator)
		c.Nullable = false
		table.AddColumn(c)
	}
	if typ.Inheritance == gen.InheritJoinedTable {
		parent := typ.Parent
		table.ForeignKeys = append(table.ForeignKeys, &ForeignKey{
			Symbol:     fkSymbol(table.Name, pk.Name),
			Columns:    []string{pk.Name},
			RefTable:   parent.Table(),
			RefColumns: []string{parent.PK().Name},
			OnDelete:   "CASCADE",
		})
	}
	if err := addForeignKeys(table, typ); err != nil {
		return nil, err
	}
	addIndexes(table, typ)
	return table, nil
}

func addForeignKeys(table *Table, typ *gen.Type) error {
	for _, fk := range typ.ForeignKeys {
		c := fieldColumn(fk.Field)
		table.AddColumn(c)
		refType, refPK := fk.Edge.Type, fk.Edge.Type.PK()
		if fk.Edge.O2M() {
			// The key column of a has-many edge points back at the owner.
			refType, refPK = fk.Edge.Owner, fk.Edge.Owner.PK()
		}
		if refPK == nil {
			return fmt.Errorf("dialect/sql: model %s has no primary key", refType.Name)
		}
		onDelete := ""
		if fk.OnDeleteCascade {
			onDelete = "CASCADE"
		}
		table.ForeignKeys = append(table.ForeignKeys, &ForeignKey{
			Symbol:     fkSymbol(table.Name, c.Name),
			Columns:    []string{c.Name},
			RefTable:   refType.Table(),
			RefColumns: []string{refPK.Name},
			OnDelete:   onDelete,
		})
	}
	return nil
}

func addIndexes(table *Table, typ *gen.Type) {
	for _, f := range typ.Fields {
		if !f.Indexed {
			continue
		}
		table.Indexes = append(table.Indexes, &Index{
			Name:    fmt.Sprintf("idx_%s_%s", table.Name, f.Name),
			Columns: []string{f.Name},
		})
	}
}

// assocTables synthesizes one table per many-to-many edge pair, holding
// exactly two foreign keys forming the composite primary key.
func assocTables(g *gen.Graph, byName map[string]*Table) ([]*Table, error) {
	var tables []*Table
	for _, typ := range g.Nodes {
		for _, e := range typ.Edges {
			if !e.M2M() || e.IsInverse() {
				continue
			}
			if _, ok := byName[e.Rel.Table]; ok {
				return nil, fmt.Errorf("dialect/sql: association table %q collides with a model table", e.Rel.Table)
			}
			ownerPK, targetPK := e.Owner.PK(), e.Type.PK()
			table := NewTable(e.Rel.Table)
			cols := e.Rel.Columns
			table.AddColumn(&Column{Name: cols[0], Type: ownerPK.Type})
			table.AddColumn(&Column{Name: cols[1], Type: targetPK.Type})
			table.PrimaryKey = []string{cols[0], cols[1]}
			table.ForeignKeys = []*ForeignKey{
				{
					Symbol:     fkSymbol(table.Name, cols[0]),
					Columns:    []string{cols[0]},
					RefTable:   e.Owner.Table(),
					RefColumns: []string{ownerPK.Name},
					OnDelete:   "CASCADE",
				},
				{
					Symbol:     fkSymbol(table.Name, cols[1]),
					Columns:    []string{cols[1]},
					RefTable:   e.Type.Table(),
					RefColumns: []string{targetPK.Name},
					OnDelete:   "CASCADE",
				},
			}
			byName[table.Name] = table
			tables = append(tables, table)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

func fieldColumn(f *gen.Field) *Column {
	return &Column{
		Name:      f.Name,
		Type:      f.Type,
		Size:      f.Size,
		Nullable:  f.Nillable,
		Unique:    f.Unique,
		Increment: f.AutoIncrement,
		Default:   f.Default,
		Enums:     f.Enums,
	}
}

func fkSymbol(table, column string) string {
	return fmt.Sprintf("fk_%s_%s", table, column)
}
