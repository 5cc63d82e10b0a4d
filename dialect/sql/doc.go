// Package sql implements the dialect.Driver contract on top of database/sql.
//
// # Drivers
//
// Driver wraps a *sql.DB; Tx wraps a *sql.Tx started from it. Both expose the
// dialect.ExecQuerier methods, which take the arguments as []any and scan
// the result into a destination:
//
//	drv := sql.OpenDB(dialect.SQLite, db)
//
//	var res sql.Result
//	err := drv.Exec(ctx, "INSERT INTO settings (key, value) VALUES (?, ?)", []any{"a", "1"}, &res)
//
//	rows := &sql.Rows{}
//	err = drv.Query(ctx, "SELECT key, value FROM settings", []any{}, rows)
//	defer rows.Close()
//
// # Scanning
//
// QueryValue and ScanValue read a single scalar; ScanMaps reads every row as a
// column-name to value mapping:
//
//	var version string
//	err := sql.QueryValue(ctx, drv, "SELECT sqlite_version()", nil, &version)
//
// # Interpolation
//
// Interpolate substitutes "?" placeholders with SQL literals. It backs
// diagnostics such as EXPLAIN, where the engine needs the full statement text:
//
//	q, err := sql.Interpolate("SELECT * FROM users WHERE id = ?", []any{42})
//	// SELECT * FROM users WHERE id = 42
//
// # Wrappers
//
// StatsDriver collects execution counters and reports slow statements;
// DebugDriver logs every statement through log/slog. Both wrap any
// dialect.Driver and can be stacked.
package sql
