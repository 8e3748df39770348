package sql

import (
	"context"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/sqlite"

	"github.com/argentdb/argent/compiler/gen"
	"github.com/argentdb/argent/dialect"
)

// Create creates all given tables on the connected database, in order.
// Tables are created without foreign-key constraints first and the
// constraints are added afterwards, so mutually referencing tables work on
// every dialect. SQLite embeds the constraints inline instead, as it cannot
// add them to existing tables.
func Create(ctx context.Context, drv dialect.Driver, tables ...*Table) error {
	name := drv.Dialect()
	inline := name == dialect.SQLite
	for _, t := range tables {
		stmt, err := createTable(name, t, inline)
		if err != nil {
			return err
		}
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("dialect/sql: create table %q: %w", t.Name, err)
		}
		for _, idx := range t.Indexes {
			if err := drv.Exec(ctx, createIndex(name, t, idx), []any{}, nil); err != nil {
				return fmt.Errorf("dialect/sql: create index %q: %w", idx.Name, err)
			}
		}
	}
	if inline {
		return nil
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if err := drv.Exec(ctx, addConstraint(name, t, fk), []any{}, nil); err != nil {
				return fmt.Errorf("dialect/sql: add constraint %q: %w", fk.Symbol, err)
			}
		}
	}
	return nil
}

// DDL renders the create statements for the given tables on the named
// dialect, in the order Create would execute them.
func DDL(name string, tables ...*Table) ([]string, error) {
	inline := name == dialect.SQLite
	var stmts []string
	for _, t := range tables {
		stmt, err := createTable(name, t, inline)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		for _, idx := range t.Indexes {
			stmts = append(stmts, createIndex(name, t, idx))
		}
	}
	if inline {
		return stmts, nil
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			stmts = append(stmts, addConstraint(name, t, fk))
		}
	}
	return stmts, nil
}

func createTable(name string, t *Table, inlineFKs bool) (string, error) {
	if !isValidIdentifier(t.Name) {
		return "", fmt.Errorf("dialect/sql: invalid table name %q", t.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", quote(name, t.Name))
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		col, err := columnDDL(name, t, c)
		if err != nil {
			return "", err
		}
		b.WriteString(col)
	}
	// SQLite ties auto-increment to the "INTEGER PRIMARY KEY" form; the
	// key clause is emitted on the column in that case.
	if len(t.PrimaryKey) > 0 && !(name == dialect.SQLite && t.autoIncrementPK()) {
		fmt.Fprintf(&b, ", PRIMARY KEY (%s)", quoteJoin(name, t.PrimaryKey))
	}
	if inlineFKs {
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(&b, ", FOREIGN KEY (%s) REFERENCES %s (%s)",
				quoteJoin(name, fk.Columns), quote(name, fk.RefTable), quoteJoin(name, fk.RefColumns))
			if fk.OnDelete != "" {
				fmt.Fprintf(&b, " ON DELETE %s", fk.OnDelete)
			}
		}
	}
	b.WriteString(")")
	return b.String(), nil
}

func columnDDL(name string, t *Table, c *Column) (string, error) {
	if !isValidIdentifier(c.Name) {
		return "", fmt.Errorf("dialect/sql: invalid column name %q", c.Name)
	}
	var b strings.Builder
	b.WriteString(quote(name, c.Name))
	b.WriteByte(' ')
	b.WriteString(cType(name, c))
	switch {
	case name == dialect.SQLite && c.Increment && t.isPK(c.Name):
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	case !c.Nullable:
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if name == dialect.MySQL && c.Increment {
		b.WriteString(" AUTO_INCREMENT")
	}
	if c.Default != nil {
		fmt.Fprintf(&b, " DEFAULT %s", defaultLit(c.Default))
	}
	if len(c.Enums) > 0 {
		fmt.Fprintf(&b, " CHECK (%s IN (%s))", quote(name, c.Name), enumList(c.Enums))
	}
	return b.String(), nil
}

func defaultLit(v any) string {
	switch v := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func enumList(enums []any) string {
	quoted := make([]string, len(enums))
	for i, e := range enums {
		switch v := e.(type) {
		case string:
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		default:
			quoted[i] = fmt.Sprintf("%v", v)
		}
	}
	return strings.Join(quoted, ", ")
}

// cType maps a storage column type tag to the dialect's type name.
func cType(name string, c *Column) string {
	switch name {
	case dialect.Postgres:
		return postgresType(c)
	case dialect.SQLite:
		return sqliteType(c)
	default:
		return mysqlType(c)
	}
}

func postgresType(c *Column) string {
	switch c.Type {
	case gen.TypeInt, gen.TypeInt64:
		if c.Increment {
			return postgres.TypeBigSerial
		}
		return postgres.TypeBigInt
	case gen.TypeInt32:
		if c.Increment {
			return postgres.TypeSerial
		}
		return postgres.TypeInteger
	case gen.TypeFloat:
		return postgres.TypeReal
	case gen.TypeDouble:
		return postgres.TypeDouble
	case gen.TypeBool:
		return postgres.TypeBoolean
	case gen.TypeString, gen.TypeEnum:
		if c.Size != nil {
			return fmt.Sprintf("varchar(%d)", *c.Size)
		}
		return postgres.TypeVarChar
	case gen.TypeText:
		return postgres.TypeText
	case gen.TypeDate:
		return postgres.TypeDate
	case gen.TypeDateTime:
		return postgres.TypeTimestampTZ
	case gen.TypeBytes:
		return postgres.TypeBytea
	case gen.TypeUUID:
		return postgres.TypeUUID
	default:
		return postgres.TypeText
	}
}

func sqliteType(c *Column) string {
	switch c.Type {
	case gen.TypeInt, gen.TypeInt32, gen.TypeInt64, gen.TypeBool:
		return sqlite.TypeInteger
	case gen.TypeFloat, gen.TypeDouble:
		return sqlite.TypeReal
	case gen.TypeBytes:
		return sqlite.TypeBlob
	case gen.TypeDate:
		return "date"
	case gen.TypeDateTime:
		return "datetime"
	default:
		return sqlite.TypeText
	}
}

func mysqlType(c *Column) string {
	switch c.Type {
	case gen.TypeInt, gen.TypeInt64:
		return "bigint"
	case gen.TypeInt32:
		return "int"
	case gen.TypeFloat:
		return "float"
	case gen.TypeDouble:
		return "double"
	case gen.TypeBool:
		return "boolean"
	case gen.TypeString, gen.TypeEnum:
		size := 255
		if c.Size != nil {
			size = *c.Size
		}
		return fmt.Sprintf("varchar(%d)", size)
	case gen.TypeText:
		return "longtext"
	case gen.TypeDate:
		return "date"
	case gen.TypeDateTime:
		return "timestamp"
	case gen.TypeBytes:
		return "blob"
	case gen.TypeUUID:
		return "char(36)"
	default:
		return "longtext"
	}
}

func createIndex(name string, t *Table, idx *Index) string {
	if name == dialect.MySQL {
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			quote(name, idx.Name), quote(name, t.Name), quoteJoin(name, idx.Columns))
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		quote(name, idx.Name), quote(name, t.Name), quoteJoin(name, idx.Columns))
}

func addConstraint(name string, t *Table, fk *ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quote(name, t.Name), quote(name, fk.Symbol), quoteJoin(name, fk.Columns),
		quote(name, fk.RefTable), quoteJoin(name, fk.RefColumns))
	if fk.OnDelete != "" {
		fmt.Fprintf(&b, " ON DELETE %s", fk.OnDelete)
	}
	return b.String()
}

func (t *Table) isPK(column string) bool {
	return len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == column
}

func (t *Table) autoIncrementPK() bool {
	for _, c := range t.Columns {
		if c.Increment && t.isPK(c.Name) {
			return true
		}
	}
	return false
}

func quote(name, ident string) string {
	if name == dialect.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

func quoteJoin(name string, idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = quote(name, ident)
	}
	return strings.Join(quoted, ", ")
}
