package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/syssam/picodb/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, kind StmtKind, query string, _ []any, _ time.Duration) {
			slow = append(slow, kind.String()+" "+query)
		}),
	)
	ctx := context.Background()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE").WillReturnError(errors.New("boom"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())
	require.Error(t, drv.Exec(ctx, "DELETE FROM t", []any{}, nil))

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO t DEFAULT VALUES", []any{}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), s.TotalQueries)
	assert.Equal(t, int64(2), s.TotalExecs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(3), s.SlowQueries)
	assert.Equal(t, int64(1), s.Begins)
	assert.Equal(t, int64(1), s.Commits)
	assert.Zero(t, s.Rollbacks)
	assert.Equal(t, []string{"query SELECT 1", "exec DELETE FROM t", "exec INSERT INTO t DEFAULT VALUES"}, slow)
	assert.Contains(t, s.String(), "queries=1 execs=2")
	assert.Contains(t, s.String(), "tx=1/1/0")

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Stats())
}

func TestStatsDriverTxOutcomes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	ctx := context.Background()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	_, err = drv.Tx(ctx)
	require.Error(t, err)

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	tx, err = drv.Tx(ctx)
	require.NoError(t, err)
	require.Error(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(2), s.Begins)
	assert.Zero(t, s.Commits)
	assert.Equal(t, int64(1), s.Rollbacks)
	assert.Equal(t, int64(2), s.Errors)
}

func TestStatsDriverSharedCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	shared := &QueryStats{}
	a := NewStatsDriver(OpenDB(dialect.SQLite, db), WithQueryStats(shared))
	b := NewStatsDriver(OpenDB(dialect.SQLite, db), WithQueryStats(shared))

	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, a.Exec(context.Background(), "VACUUM", []any{}, nil))
	require.NoError(t, b.Exec(context.Background(), "VACUUM", []any{}, nil))
	assert.Equal(t, int64(2), shared.Stats().TotalExecs)
	assert.Same(t, a.QueryStats(), b.QueryStats())
}

func TestStatsDriverThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())
	drv.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, drv.SlowThreshold())
}

func TestStatsSnapshotAvg(t *testing.T) {
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 1, TotalExecs: 3, TotalDuration: 8 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
}

func TestSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "VACUUM", []any{}, nil))
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "kind=exec")
	assert.Contains(t, buf.String(), "sql=VACUUM")
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLogger(logger))
	ctx := context.Background()

	mock.ExpectExec("PRAGMA foreign_keys").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	require.NoError(t, drv.Exec(ctx, "PRAGMA foreign_keys = ON", []any{}, nil))
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO t DEFAULT VALUES", []any{}, nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "PRAGMA foreign_keys = ON")
	assert.Contains(t, out, "begin transaction")
	assert.Contains(t, out, "tx exec")
	assert.Contains(t, out, "rollback transaction")
	assert.Contains(t, out, "tx=")
}

func TestDebugDriverLevel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLogger(logger))

	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "VACUUM", []any{}, nil))
	assert.Empty(t, buf.String(), "debug records are dropped by an info handler")

	drv = NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLogger(logger), DebugWithLevel(slog.LevelInfo))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "VACUUM", []any{}, nil))
	assert.Contains(t, buf.String(), "VACUUM")
}
