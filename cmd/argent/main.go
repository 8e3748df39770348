// Command argent compiles schema documents into relational model
// definitions and emits DDL, model listings or binary snapshots.
package main

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/argentdb/argent"
	"github.com/argentdb/argent/compiler/gen"
	"github.com/argentdb/argent/compiler/load"
	"github.com/argentdb/argent/dialect"
	"github.com/argentdb/argent/dialect/sql"
)

var (
	autoID        bool
	discriminator string
	dialectName   string
	dsn           string
	outFile       string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:           "argent",
	Short:         "Compile schema documents into relational models",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var ddlCmd = &cobra.Command{
	Use:   "ddl [documents...]",
	Short: "Emit the CREATE statements for the compiled models",
	Long: `Compiles the given schema documents and prints the DDL for the
selected dialect. With --dsn the statements are executed against the
database instead of printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDDL,
}

var modelsCmd = &cobra.Command{
	Use:   "models [documents...]",
	Short: "List the compiled model definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runModels,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [documents...]",
	Short: "Write a binary snapshot of the compiled model definitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSnapshot,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&autoID, "auto-id", false, "synthesize integer primary keys for schemas without one")
	rootCmd.PersistentFlags().StringVar(&discriminator, "discriminator", "", "discriminator column for single-table inheritance")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log executed statements")

	ddlCmd.Flags().StringVar(&dialectName, "dialect", dialect.Postgres, "target dialect: postgres, sqlite3 or mysql")
	ddlCmd.Flags().StringVar(&dsn, "dsn", "", "database to apply the DDL to instead of printing it")

	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(ddlCmd, modelsCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "argent:", err)
		os.Exit(1)
	}
}

// driverName maps a dialect to the name its database/sql driver registers
// under. The SQLite driver is modernc.org/sqlite, which registers as
// "sqlite" rather than "sqlite3".
func driverName(name string) string {
	if name == dialect.SQLite {
		return "sqlite"
	}
	return name
}

func compile(paths []string) (*gen.Graph, error) {
	schemas, err := load.Files(paths...)
	if err != nil {
		return nil, err
	}
	var opts []gen.Option
	if autoID {
		opts = append(opts, gen.AutoID())
	}
	if discriminator != "" {
		opts = append(opts, gen.Discriminator(discriminator))
	}
	return argent.Compile(schemas, opts...)
}

func runDDL(cmd *cobra.Command, args []string) error {
	g, err := compile(args)
	if err != nil {
		return err
	}
	tables, err := sql.Tables(g)
	if err != nil {
		return err
	}
	if dsn == "" {
		stmts, err := sql.DDL(dialectName, tables...)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
		}
		return nil
	}
	db, err := stdsql.Open(driverName(dialectName), dsn)
	if err != nil {
		return err
	}
	drv := sql.OpenDB(dialectName, db)
	defer drv.Close()
	var d dialect.Driver = drv
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
		d = dialect.Debug(drv, logger)
	}
	return sql.Create(context.Background(), d, tables...)
}

func runModels(cmd *cobra.Command, args []string) error {
	g, err := compile(args)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, typ := range g.Nodes {
		fmt.Fprintf(w, "%s (table %s)\n", typ.Name, typ.Table())
		for _, f := range typ.AllFields() {
			var marks []string
			if pk := typ.PK(); pk != nil && pk.Name == f.Name {
				marks = append(marks, "pk")
			}
			if f.Nillable {
				marks = append(marks, "nullable")
			}
			suffix := ""
			if len(marks) > 0 {
				suffix = " (" + strings.Join(marks, ", ") + ")"
			}
			fmt.Fprintf(w, "  %s %s%s\n", f.Name, f.Type, suffix)
		}
		for _, e := range typ.AllEdges() {
			fmt.Fprintf(w, "  %s -> %s (%v)\n", e.Name, e.Type.Name, e.Rel)
		}
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	g, err := compile(args)
	if err != nil {
		return err
	}
	data, err := g.Snapshot().MarshalBinary()
	if err != nil {
		return err
	}
	if outFile == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(outFile, data, 0o644)
}
