package main

import (
	stdsql "database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argentdb/argent/dialect"
)

// Every dialect the ddl command offers on the --dsn path must have its
// database/sql driver registered.
func TestDriversRegistered(t *testing.T) {
	require := require.New(t)
	registered := make(map[string]bool)
	for _, name := range stdsql.Drivers() {
		registered[name] = true
	}
	for _, d := range []string{dialect.Postgres, dialect.SQLite, dialect.MySQL} {
		require.Truef(registered[driverName(d)], "dialect %s: driver %q not registered", d, driverName(d))
	}
}

func TestDriverName(t *testing.T) {
	require := require.New(t)
	require.Equal("sqlite", driverName(dialect.SQLite))
	require.Equal("postgres", driverName(dialect.Postgres))
	require.Equal("mysql", driverName(dialect.MySQL))
}
