// Package sqlite implements the dialect.Adapter capability set for SQLite.
//
// The adapter translates abstract requests into SQLite SQL and pragmas and
// executes them on a dialect.Driver owned by the caller:
//
//	drv, err := sqlite.Open(ctx, sqlite.Config{Filename: "app.db", JournalMode: "WAL"})
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	a := sqlite.New(drv)
//	if err := a.EnableForeignKeys(ctx); err != nil {
//	    return err
//	}
//	if err := a.Upsert(ctx, "settings", "option", "value", map[string]string{
//	    "theme": "dark",
//	}); err != nil {
//	    var uerr *sqlite.UpsertError
//	    if errors.As(err, &uerr) {
//	        log.Printf("key %q failed: %v", uerr.Key, uerr.Err)
//	    }
//	}
//
// # Dialect Notes
//
//   - Identifiers are not quoted and casts are not emitted; SQLite is
//     dynamically typed.
//   - There is no native date difference expression: DateDiff reports false.
//   - LIKE and ILIKE both map to LIKE, which SQLite evaluates
//     case-insensitively for ASCII.
//   - The schema version lives in PRAGMA user_version, a 32-bit integer.
//
// # Connections
//
// foreign_keys and last_insert_rowid are connection-scoped. Open pins the
// driver to a single connection so that they hold across calls.
package sqlite
