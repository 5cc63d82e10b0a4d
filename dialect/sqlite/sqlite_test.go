package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/picodb/dialect"
	"github.com/syssam/picodb/dialect/sql"
)

func mockAdapter(t *testing.T, opts ...Option) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sql.OpenDB(dialect.SQLite, db), opts...), mock
}

func TestRequiredAttributes(t *testing.T) {
	a := New(nil)
	attrs := a.RequiredAttributes()
	assert.Equal(t, []string{"filename"}, attrs)

	attrs[0] = "changed"
	assert.Equal(t, []string{"filename"}, RequiredAttributes())
}

func TestSQLFragments(t *testing.T) {
	a := New(nil)

	assert.Equal(t, "users", a.Escape("users"))
	assert.Equal(t, `"quoted"`, a.Escape(`"quoted"`))
	assert.Equal(t, "price", a.Cast("price", "integer"))
	assert.Equal(t, "name", a.Cast("name", "varchar", "255"))
	assert.Equal(t, "date('now')", a.Date())
	assert.Equal(t, "datetime(CURRENT_TIMESTAMP, 'localtime')", a.Timestamp())

	expr, ok := a.DateDiff("day", "a", "b")
	assert.False(t, ok)
	assert.Empty(t, expr)
}

func TestOperator(t *testing.T) {
	a := New(nil)
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"LIKE", "LIKE", true},
		{"ILIKE", "LIKE", true},
		{"like", "", false},
		{"REGEXP", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := a.Operator(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	a := New(nil)
	assert.True(t, a.IsDuplicateKeyError(23000))
	assert.False(t, a.IsDuplicateKeyError(0))
	assert.False(t, a.IsDuplicateKeyError(19))
	assert.False(t, a.IsDuplicateKeyError(1062))

	assert.True(t, a.IsDuplicateKey(errors.New("UNIQUE constraint failed: kv.k")))
	assert.False(t, a.IsDuplicateKey(errors.New("database is locked")))
	assert.False(t, a.IsDuplicateKey(nil))
}

func TestForeignKeys(t *testing.T) {
	a, mock := mockAdapter(t)
	ctx := context.Background()

	mock.ExpectExec("PRAGMA foreign_keys = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PRAGMA foreign_keys = OFF").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, a.EnableForeignKeys(ctx))
	require.NoError(t, a.DisableForeignKeys(ctx))

	mock.ExpectExec("PRAGMA foreign_keys = ON").WillReturnError(errors.New("disk I/O error"))
	err := a.EnableForeignKeys(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLastID(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectQuery("SELECT last_insert_rowid()").
		WillReturnRows(sqlmock.NewRows([]string{"last_insert_rowid()"}).AddRow(int64(17)))
	id, err := a.LastID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	mock.ExpectQuery("SELECT last_insert_rowid()").WillReturnError(errors.New("closed"))
	id, err = a.LastID(context.Background())
	require.Error(t, err)
	assert.Zero(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaVersion(t *testing.T) {
	a, mock := mockAdapter(t)
	ctx := context.Background()

	mock.ExpectQuery("PRAGMA user_version").
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(int64(42)))
	v, err := a.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	for _, tt := range []struct {
		version int32
		query   string
	}{
		{0, "PRAGMA user_version=0"},
		{7, "PRAGMA user_version=7"},
		{-3, "PRAGMA user_version=-3"},
		{math.MaxInt32, "PRAGMA user_version=2147483647"},
	} {
		mock.ExpectExec(tt.query).WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, a.SetSchemaVersion(ctx, tt.version))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseVersion(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectQuery("SELECT sqlite_version()").
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.46.0"))
	v, err := a.DatabaseVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.46.0", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExplain(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectQuery("EXPLAIN QUERY PLAN SELECT * FROM items WHERE name = 'it''s' AND id > 3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent", "notused", "detail"}).
			AddRow(int64(2), int64(0), int64(0), "SCAN items"))
	plan, err := a.Explain(context.Background(), "SELECT * FROM items WHERE name = ? AND id > ?", []any{"it's", 3})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "SCAN items", plan[0]["detail"])
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = a.Explain(context.Background(), "SELECT ?", nil)
	require.Error(t, err)
}

type itemStatus string

func TestExplainNamedArgument(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectQuery("EXPLAIN QUERY PLAN SELECT * FROM items -- by status?\nWHERE status = 'open'").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent", "notused", "detail"}).
			AddRow(int64(2), int64(0), int64(0), "SCAN items"))
	plan, err := a.Explain(context.Background(), "SELECT * FROM items -- by status?\nWHERE status = ?", []any{itemStatus("open")})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "SCAN items", plan[0]["detail"])
	require.NoError(t, mock.ExpectationsWereMet())
}

const upsertQuery = "INSERT OR REPLACE INTO settings (option, value) VALUES (?, ?)"

func TestUpsert(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WithArgs("a", "1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsertQuery).WithArgs("b", "2").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(upsertQuery).WithArgs("c", "").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	err := a.Upsert(context.Background(), "settings", "option", "value", map[string]string{
		"c": "",
		"a": "1",
		"b": "2",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmpty(t *testing.T) {
	a, mock := mockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, a.Upsert(context.Background(), "settings", "option", "value", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertInsertError(t *testing.T) {
	var buf bytes.Buffer
	a, mock := mockAdapter(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	cause := errors.New("CHECK constraint failed: value")
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WithArgs("a", "1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsertQuery).WithArgs("b", "bad").WillReturnError(cause)
	mock.ExpectRollback()

	err := a.Upsert(context.Background(), "settings", "option", "value", map[string]string{
		"a": "1",
		"b": "bad",
		"c": "3",
	})
	require.Error(t, err)
	var uerr *UpsertError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "settings", uerr.Table)
	assert.Equal(t, OpInsert, uerr.Op)
	assert.Equal(t, 1, uerr.Index)
	assert.Equal(t, "b", uerr.Key)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `key "b" (#1)`)
	assert.Contains(t, buf.String(), "upsert failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRollbackError(t *testing.T) {
	a, mock := mockAdapter(t, WithLogger(slog.New(slog.DiscardHandler)))

	cause := errors.New("disk full")
	rbErr := errors.New("rollback broken")
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WithArgs("a", "1").WillReturnError(cause)
	mock.ExpectRollback().WillReturnError(rbErr)

	err := a.Upsert(context.Background(), "settings", "option", "value", map[string]string{"a": "1"})
	require.Error(t, err)
	var rerr *RollbackError
	require.True(t, errors.As(err, &rerr))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, rbErr)
	assert.Contains(t, err.Error(), "rollback failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBeginError(t *testing.T) {
	a, mock := mockAdapter(t, WithLogger(slog.New(slog.DiscardHandler)))

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))
	err := a.Upsert(context.Background(), "settings", "option", "value", map[string]string{"a": "1"})
	var uerr *UpsertError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, OpBegin, uerr.Op)
	assert.Equal(t, -1, uerr.Index)
	assert.Contains(t, err.Error(), "database is locked")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCommitError(t *testing.T) {
	a, mock := mockAdapter(t, WithLogger(slog.New(slog.DiscardHandler)))

	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WithArgs("a", "1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := a.Upsert(context.Background(), "settings", "option", "value", map[string]string{"a": "1"})
	var uerr *UpsertError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, OpCommit, uerr.Op)
	assert.Contains(t, err.Error(), "sqlite: upsert settings: commit")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertInvalidIdentifier(t *testing.T) {
	a, mock := mockAdapter(t)

	for _, args := range [][3]string{
		{"settings; DROP TABLE x", "option", "value"},
		{"settings", "", "value"},
		{"settings", "option", "value)"},
	} {
		err := a.Upsert(context.Background(), args[0], args[1], args[2], map[string]string{"a": "1"})
		var uerr *UpsertError
		require.True(t, errors.As(err, &uerr), args)
		assert.Equal(t, OpValidate, uerr.Op)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
