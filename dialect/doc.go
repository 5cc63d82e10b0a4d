// Package dialect provides the database dialect abstraction for picodb.
//
// This package defines the connection contract the generic SQL layer executes
// against, and the Adapter capability set each dialect implements on top of
// it.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface wraps a live connection handle:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface adds Commit and Rollback to ExecQuerier:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # Adapter Interface
//
// An Adapter translates abstract requests (quoting, upsert, schema version,
// date expressions, error classification) into dialect SQL executed on a
// Driver it does not own:
//
//	drv, err := sqlite.Open(sqlite.Config{Filename: "app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	adapter := sqlite.New(drv)
//	version, err := adapter.SchemaVersion(ctx)
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, interpolation and scanning helpers
//   - dialect/sql/sqlerr: constraint error classification
//   - dialect/sqlite: the SQLite Adapter
package dialect
