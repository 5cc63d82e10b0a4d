package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/syssam/picodb/dialect"
	"github.com/syssam/picodb/dialect/sql"
	"github.com/syssam/picodb/dialect/sql/sqlerr"
)

// SQL fragments emitted by the adapter.
const (
	dateExpr      = "date('now')"
	timestampExpr = "datetime(CURRENT_TIMESTAMP, 'localtime')"
	likeOperator  = "LIKE"
)

// requiredAttributes lists the settings the connection setup must provide.
var requiredAttributes = []string{"filename"}

// RequiredAttributes returns the settings keys required to open an SQLite connection.
func RequiredAttributes() []string {
	return slices.Clone(requiredAttributes)
}

// Adapter implements dialect.Adapter for SQLite.
//
// It holds the driver it was given but does not own it: closing the driver
// is left to the caller. The adapter performs no locking; per-connection
// state such as foreign_keys or last_insert_rowid is only coherent when the
// driver is pinned to a single connection (see Open).
type Adapter struct {
	drv dialect.Driver
	log *slog.Logger
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to report failed upserts.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		a.log = l
	}
}

// New returns an SQLite adapter executing on drv.
func New(drv dialect.Driver, opts ...Option) *Adapter {
	a := &Adapter{drv: drv, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Driver returns the driver the adapter executes on.
func (a *Adapter) Driver() dialect.Driver {
	return a.drv
}

// RequiredAttributes implements dialect.Adapter.
func (*Adapter) RequiredAttributes() []string {
	return RequiredAttributes()
}

// EnableForeignKeys runs PRAGMA foreign_keys = ON.
func (a *Adapter) EnableForeignKeys(ctx context.Context) error {
	return a.exec(ctx, "PRAGMA foreign_keys = ON")
}

// DisableForeignKeys runs PRAGMA foreign_keys = OFF.
func (a *Adapter) DisableForeignKeys(ctx context.Context) error {
	return a.exec(ctx, "PRAGMA foreign_keys = OFF")
}

// IsDuplicateKeyError reports whether code is the integrity-constraint
// violation code (23000).
func (*Adapter) IsDuplicateKeyError(code int) bool {
	return code == sqlerr.IntegrityConstraintViolation
}

// IsDuplicateKey reports whether err, as returned by the driver, is an
// integrity-constraint violation.
func (a *Adapter) IsDuplicateKey(err error) bool {
	return a.IsDuplicateKeyError(sqlerr.SQLState(err))
}

// Escape returns identifier unchanged.
func (*Adapter) Escape(identifier string) string {
	return identifier
}

// Cast returns value unchanged; SQLite is dynamically typed.
func (*Adapter) Cast(value, _ string, _ ...string) string {
	return value
}

// Date returns the expression for the current date.
func (*Adapter) Date() string {
	return dateExpr
}

// Timestamp returns the expression for the current local timestamp.
func (*Adapter) Timestamp() string {
	return timestampExpr
}

// DateDiff reports that SQLite has no native date difference expression.
func (*Adapter) DateDiff(_, _, _ string) (string, bool) {
	return "", false
}

// Operator maps LIKE and ILIKE to SQLite's LIKE.
func (*Adapter) Operator(operator string) (string, bool) {
	switch operator {
	case "LIKE", "ILIKE":
		return likeOperator, true
	default:
		return "", false
	}
}

// LastID returns the rowid of the most recent successful insert on the connection.
func (a *Adapter) LastID(ctx context.Context) (int64, error) {
	var id int64
	if err := sql.QueryValue(ctx, a.drv, "SELECT last_insert_rowid()", nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// SchemaVersion returns the value of PRAGMA user_version.
func (a *Adapter) SchemaVersion(ctx context.Context) (int32, error) {
	var version int32
	if err := sql.QueryValue(ctx, a.drv, "PRAGMA user_version", nil, &version); err != nil {
		return 0, err
	}
	return version, nil
}

// SetSchemaVersion stores version in PRAGMA user_version.
func (a *Adapter) SetSchemaVersion(ctx context.Context, version int32) error {
	// Pragma values cannot be bound; the int32 is formatted, never a raw string.
	return a.exec(ctx, "PRAGMA user_version="+strconv.FormatInt(int64(version), 10))
}

// Upsert inserts or replaces each key/value pair of dict into table within a
// single transaction. Keys are written in sorted order. On failure the
// transaction is rolled back and an *UpsertError is returned.
func (a *Adapter) Upsert(ctx context.Context, table, keyColumn, valueColumn string, dict map[string]string) error {
	for _, name := range []string{table, keyColumn, valueColumn} {
		if !sql.IsValidIdentifier(name) {
			return &UpsertError{Table: table, Op: OpValidate, Index: -1, Err: fmt.Errorf("invalid identifier %q", name)}
		}
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, %s) VALUES (?, ?)",
		a.Escape(table),
		a.Escape(keyColumn),
		a.Escape(valueColumn),
	)
	tx, err := a.drv.Tx(ctx)
	if err != nil {
		return &UpsertError{Table: table, Op: OpBegin, Index: -1, Err: err}
	}
	for i, key := range slices.Sorted(maps.Keys(dict)) {
		if err := tx.Exec(ctx, query, []any{key, dict[key]}, nil); err != nil {
			return a.rollback(ctx, tx, &UpsertError{Table: table, Op: OpInsert, Index: i, Key: key, Err: err})
		}
	}
	// A failed commit ends the transaction; there is nothing left to roll back.
	if err := tx.Commit(); err != nil {
		return a.failed(ctx, &UpsertError{Table: table, Op: OpCommit, Index: -1, Err: err})
	}
	return nil
}

// rollback rolls tx back and attaches a rollback failure to uerr.
func (a *Adapter) rollback(ctx context.Context, tx dialect.Tx, uerr *UpsertError) error {
	if err := tx.Rollback(); err != nil {
		uerr.Err = &RollbackError{Cause: uerr.Err, Err: err}
	}
	return a.failed(ctx, uerr)
}

func (a *Adapter) failed(ctx context.Context, uerr *UpsertError) error {
	a.log.WarnContext(ctx, "upsert failed",
		"table", uerr.Table,
		"op", uerr.Op,
		"key", uerr.Key,
		"error", uerr.Err,
	)
	return uerr
}

// Explain runs EXPLAIN QUERY PLAN on query with args interpolated, and
// returns the plan rows.
func (a *Adapter) Explain(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	stmt, err := sql.Interpolate(query, args)
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := a.drv.Query(ctx, "EXPLAIN QUERY PLAN "+stmt, []any{}, rows); err != nil {
		return nil, err
	}
	return sql.ScanMaps(rows)
}

// DatabaseVersion returns the SQLite library version.
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := sql.QueryValue(ctx, a.drv, "SELECT sqlite_version()", nil, &version); err != nil {
		return "", err
	}
	return version, nil
}

func (a *Adapter) exec(ctx context.Context, query string) error {
	return a.drv.Exec(ctx, query, []any{}, nil)
}

var _ dialect.Adapter = (*Adapter)(nil)
