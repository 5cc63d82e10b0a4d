// Package picodb opens database connections from key/value settings and
// pairs each connection with its dialect adapter.
//
// Settings are usually read from YAML:
//
//	s, err := picodb.LoadSettings("db.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := picodb.Open(ctx, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	version, err := db.Adapter().SchemaVersion(ctx)
//
// Each driver declares the settings it requires; Open reports the absent ones
// as a *MissingSettingError before connecting. The SQLite driver requires
// "filename" and also reads busy_timeout, journal_mode, foreign_keys, debug
// and slow_query_threshold.
package picodb
