package sqlite

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syssam/picodb/dialect/sql"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DefaultBusyTimeout is used when Config.BusyTimeout is zero.
const DefaultBusyTimeout = 5 * time.Second

// ErrNoFilename is returned when a Config has no database file name.
var ErrNoFilename = errors.New("sqlite: filename is required")

var journalModes = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}

// Config describes an SQLite database connection.
type Config struct {
	// Filename is the database file path, ":memory:" or a "file:" URI.
	Filename string
	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration
	// JournalMode sets PRAGMA journal_mode when non-empty, e.g. "WAL".
	JournalMode string
}

// DSN returns the modernc.org/sqlite data source name for c.
func (c Config) DSN() (string, error) {
	if c.Filename == "" {
		return "", ErrNoFilename
	}
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()))
	if c.JournalMode != "" {
		mode := strings.ToUpper(c.JournalMode)
		if !slices.Contains(journalModes, mode) {
			return "", fmt.Errorf("sqlite: unknown journal mode %q", c.JournalMode)
		}
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", mode))
	}
	sep := "?"
	if strings.Contains(c.Filename, "?") {
		sep = "&"
	}
	return c.Filename + sep + params.Encode(), nil
}

// Open opens the database described by cfg and verifies the connection.
//
// The returned driver is pinned to a single connection, so that
// connection-scoped state (foreign_keys, last_insert_rowid, temp tables)
// is shared by every statement executed through it.
func Open(ctx context.Context, cfg Config) (*sql.Driver, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	drv, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	db := drv.DB()
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("sqlite: connecting to %s: %w", cfg.Filename, err), db.Close())
	}
	return drv, nil
}
