package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/picodb/dialect"
)

// StmtKind tells queries from statements executed for their effect.
type StmtKind uint8

// Statement kinds recorded by the StatsDriver.
const (
	KindQuery StmtKind = iota
	KindExec
)

// String returns the statement kind name.
func (k StmtKind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "exec"
}

// QueryStats holds statement and transaction counters of a StatsDriver.
// The zero value is ready to use.
type QueryStats struct {
	queries   atomic.Int64
	execs     atomic.Int64
	elapsed   atomic.Int64 // nanoseconds
	slow      atomic.Int64
	errors    atomic.Int64
	begins    atomic.Int64
	commits   atomic.Int64
	rollbacks atomic.Int64
}

// Stats returns a snapshot of the current counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.queries.Load(),
		TotalExecs:    s.execs.Load(),
		TotalDuration: time.Duration(s.elapsed.Load()),
		SlowQueries:   s.slow.Load(),
		Errors:        s.errors.Load(),
		Begins:        s.begins.Load(),
		Commits:       s.commits.Load(),
		Rollbacks:     s.rollbacks.Load(),
	}
}

// Reset sets every counter back to zero.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{
		&s.queries, &s.execs, &s.elapsed, &s.slow,
		&s.errors, &s.begins, &s.commits, &s.rollbacks,
	} {
		c.Store(0)
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	// Errors counts failed statements, begins and commits.
	Errors int64
	// Begins counts transactions started, Commits those committed and
	// Rollbacks those rolled back. An upsert batch is one transaction.
	Begins    int64
	Commits   int64
	Rollbacks int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a one-line summary.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d tx=%d/%d/%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors, s.Begins, s.Commits, s.Rollbacks,
	)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, kind StmtKind, query string, args []any, duration time.Duration)

// StatsDriver wraps a dialect.Driver and counts what passes through it:
// statements, their duration, failures and transaction outcomes.
type StatsDriver struct {
	dialect.Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Default is 100ms; a negative threshold marks every statement slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets the callback invoked for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements at warn level to l, or to the
// default logger if l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, kind StmtKind, query string, args []any, duration time.Duration) {
		l.WarnContext(ctx, "slow query detected", "kind", kind, "duration", duration, "sql", query, "args", args)
	})
}

// WithQueryStats makes the driver add to s instead of fresh counters, so
// that several drivers can report into one set.
func WithQueryStats(s *QueryStats) StatsOption {
	return func(d *StatsDriver) {
		d.stats = s
	}
}

// NewStatsDriver wraps drv with statistics collection.
//
//	drv, _ := sqlite.Open(ctx, sqlite.Config{Filename: "app.db"})
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	adapter := sqlite.New(stats)
//	...
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the counters the driver adds to.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Query executes a query and records it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, KindQuery, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec executes a statement and records it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, KindExec, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// observe runs stmt and accounts for it under kind.
func (d *StatsDriver) observe(ctx context.Context, kind StmtKind, query string, args any, stmt func() error) error {
	start := time.Now()
	err := stmt()
	elapsed := time.Since(start)

	if kind == KindQuery {
		d.stats.queries.Add(1)
	} else {
		d.stats.execs.Add(1)
	}
	d.stats.elapsed.Add(int64(elapsed))
	d.fail(err)

	d.mu.RLock()
	threshold, hook := d.slowThreshold, d.slowHook
	d.mu.RUnlock()
	if elapsed > threshold {
		d.stats.slow.Add(1)
		if hook != nil {
			argv, _ := args.([]any)
			hook(ctx, kind, query, argv, elapsed)
		}
	}
	return err
}

func (d *StatsDriver) fail(err error) {
	if err != nil {
		d.stats.errors.Add(1)
	}
}

// Tx starts a transaction whose statements and outcome are recorded.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		d.fail(err)
		return nil, err
	}
	d.stats.begins.Add(1)
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction started by a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query executes a query within the transaction and records it.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, KindQuery, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

// Exec executes a statement within the transaction and records it.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, KindExec, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

// Commit commits the transaction. Only successful commits are counted.
func (tx *StatsTx) Commit() error {
	err := tx.Tx.Commit()
	if err != nil {
		tx.driver.fail(err)
		return err
	}
	tx.driver.stats.commits.Add(1)
	return nil
}

// Rollback rolls the transaction back and counts it.
func (tx *StatsTx) Rollback() error {
	tx.driver.stats.rollbacks.Add(1)
	return tx.Tx.Rollback()
}

// DebugDriver wraps a dialect.Driver and logs every statement it executes.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
	level  slog.Level
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		d.logger = l
	}
}

// DebugWithLevel sets the level statements are logged at. Default is debug.
func DebugWithLevel(level slog.Level) DebugOption {
	return func(d *DebugDriver) {
		d.level = level
	}
}

// NewDebugDriver wraps a Driver with statement logging.
//
// Statements executed inside a transaction carry a "tx" attribute that is
// shared by the begin, commit and rollback records of that transaction.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		logger: slog.Default(),
		level:  slog.LevelDebug,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query executes a query and logs it.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.Log(ctx, d.level, "query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec executes a statement and logs it.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.Log(ctx, d.level, "exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with debug logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	l := d.logger.With("tx", uuid.NewString())
	l.Log(ctx, d.level, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		l.Log(ctx, d.level, "begin transaction failed", "error", err)
		return nil, err
	}
	return &DebugTx{Tx: tx, logger: l, level: d.level}, nil
}

// DebugTx wraps a transaction with debug logging.
type DebugTx struct {
	dialect.Tx
	logger *slog.Logger
	level  slog.Level
}

// Query executes a query within the transaction and logs it.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.logger.Log(ctx, tx.level, "tx query", "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec executes a statement within the transaction and logs it.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.logger.Log(ctx, tx.level, "tx exec", "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit commits the transaction and logs it.
func (tx *DebugTx) Commit() error {
	tx.logger.Log(context.Background(), tx.level, "commit transaction")
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction and logs it.
func (tx *DebugTx) Rollback() error {
	tx.logger.Log(context.Background(), tx.level, "rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
