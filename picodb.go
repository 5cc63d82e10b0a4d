package picodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/syssam/picodb/dialect"
	"github.com/syssam/picodb/dialect/sql"
	"github.com/syssam/picodb/dialect/sqlite"
)

// DefaultDriver is used when the settings do not name a driver.
const DefaultDriver = dialect.SQLite

// Factory opens connections for one dialect and builds its adapter.
type Factory struct {
	// RequiredAttributes lists the settings that must be present.
	RequiredAttributes []string
	// Open opens a driver from validated settings.
	Open func(ctx context.Context, s Settings) (dialect.Driver, error)
	// Adapter builds the dialect adapter on top of an open driver.
	Adapter func(drv dialect.Driver, logger *slog.Logger) dialect.Adapter
}

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register makes a dialect factory available under name.
// It panics if name is registered twice.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("picodb: Register called twice for driver " + name)
	}
	factories[name] = f
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func init() {
	Register(dialect.SQLite, Factory{
		RequiredAttributes: sqlite.RequiredAttributes(),
		Open:               openSQLite,
		Adapter: func(drv dialect.Driver, logger *slog.Logger) dialect.Adapter {
			return sqlite.New(drv, sqlite.WithLogger(logger))
		},
	})
}

func openSQLite(ctx context.Context, s Settings) (dialect.Driver, error) {
	timeout, err := s.Duration(KeyBusyTimeout)
	if err != nil {
		return nil, err
	}
	return sqlite.Open(ctx, sqlite.Config{
		Filename:    s[KeyFilename],
		BusyTimeout: timeout,
		JournalMode: s[KeyJournalMode],
	})
}

// Database is an open connection together with its dialect adapter.
type Database struct {
	driver  dialect.Driver
	adapter dialect.Adapter
	stats   *sql.StatsDriver
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used by the driver wrappers and the adapter.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open validates s, opens a connection and constructs the dialect adapter.
//
// Missing required settings are reported as a *MissingSettingError before any
// connection is attempted. When foreign_keys is true the adapter enables
// referential integrity before Open returns.
func Open(ctx context.Context, s Settings, opts ...Option) (*Database, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	name := s[KeyDriver]
	if name == "" {
		name = DefaultDriver
	}
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownDriver, name, Drivers())
	}
	if missing := s.Missing(f.RequiredAttributes); len(missing) > 0 {
		return nil, &MissingSettingError{Driver: name, Keys: missing}
	}
	debug, err := s.Bool(KeyDebug)
	if err != nil {
		return nil, err
	}
	threshold, err := s.Duration(KeySlowQueryThreshold)
	if err != nil {
		return nil, err
	}
	fk, err := s.Bool(KeyForeignKeys)
	if err != nil {
		return nil, err
	}
	drv, err := f.Open(ctx, s)
	if err != nil {
		return nil, err
	}
	db := &Database{driver: drv}
	if debug {
		db.driver = sql.NewDebugDriver(db.driver, sql.DebugWithLogger(o.logger))
	}
	if threshold > 0 {
		db.stats = sql.NewStatsDriver(db.driver,
			sql.WithSlowThreshold(threshold),
			sql.WithSlowQueryLog(o.logger),
		)
		db.driver = db.stats
	}
	db.adapter = f.Adapter(db.driver, o.logger)
	if fk {
		if err := db.adapter.EnableForeignKeys(ctx); err != nil {
			return nil, errors.Join(err, drv.Close())
		}
	}
	return db, nil
}

// Adapter returns the dialect adapter.
func (db *Database) Adapter() dialect.Adapter {
	return db.adapter
}

// Driver returns the driver, including any debug or stats wrappers.
func (db *Database) Driver() dialect.Driver {
	return db.driver
}

// Dialect returns the dialect name of the connection.
func (db *Database) Dialect() string {
	return db.driver.Dialect()
}

// Stats returns the statement statistics. The boolean is false unless
// slow_query_threshold was set.
func (db *Database) Stats() (sql.StatsSnapshot, bool) {
	if db.stats == nil {
		return sql.StatsSnapshot{}, false
	}
	return db.stats.QueryStats().Stats(), true
}

// Close closes the connection. The adapter must not be used afterwards.
func (db *Database) Close() error {
	return db.driver.Close()
}

// RequiredAttributes returns the settings required by the named driver.
func RequiredAttributes(name string) ([]string, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return slices.Clone(f.RequiredAttributes), nil
}
