// Package sqlerr classifies database driver errors.
package sqlerr

import (
	"errors"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	sqlite3 "modernc.org/sqlite/lib"
)

// IntegrityConstraintViolation is the SQLSTATE class 23 code reported for
// every integrity-constraint violation, in its numeric form.
const IntegrityConstraintViolation = 23000

// errorCoder is an interface for database errors that provide numeric result codes.
// Implemented by: modernc.org/sqlite (*sqlite.Error).
type errorCoder interface {
	Code() int
}

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by: pq.Error, pgx and some MySQL drivers.
type sqlStateError interface {
	SQLState() string
}

// SQLSTATE codes for constraint violations (Class 23).
const (
	stateNotNull    = "23502"
	stateForeignKey = "23503"
	stateUnique     = "23505"
	stateCheck      = "23514"
)

// MySQL error numbers for constraint violations.
var (
	mysqlDuplicateEntry = []uint16{1062, 1586}
	mysqlForeignKey     = []uint16{1216, 1217, 1451, 1452}
	mysqlCheck          = []uint16{3819}
	mysqlNotNull        = []uint16{1048}
)

// Code returns the extended SQLite result code carried by err.
func Code(err error) (int, bool) {
	if e, ok := asError[errorCoder](err); ok {
		return e.Code(), true
	}
	return 0, false
}

// State returns the SQLSTATE carried by err, or "" if the driver reports none.
func State(err error) string {
	if e, ok := asError[sqlStateError](err); ok {
		return e.SQLState()
	}
	if e, ok := asError[*mysql.MySQLError](err); ok && e.SQLState != [5]byte{} {
		return string(e.SQLState[:])
	}
	return ""
}

// SQLState returns the numeric SQLSTATE of err: IntegrityConstraintViolation
// for constraint violations, 0 otherwise.
func SQLState(err error) int {
	if IsConstraintError(err) {
		return IntegrityConstraintViolation
	}
	return 0
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := Code(err); ok && code&0xff == sqlite3.SQLITE_CONSTRAINT {
		return true
	}
	if strings.HasPrefix(State(err), "23") {
		return true
	}
	return IsUniqueConstraintError(err) ||
		IsPrimaryKeyConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err) ||
		IsNotNullConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	return is(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, stateUnique, mysqlDuplicateEntry, "UNIQUE constraint failed")
}

// IsPrimaryKeyConstraintError reports if the error resulted from a primary key violation.
// Only SQLite distinguishes it from a uniqueness violation.
func IsPrimaryKeyConstraintError(err error) bool {
	return is(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "", nil, "PRIMARY KEY constraint failed")
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return is(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, stateForeignKey, mysqlForeignKey, "FOREIGN KEY constraint failed")
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
// e.g. a value does not satisfy a check condition.
func IsCheckConstraintError(err error) bool {
	return is(err, sqlite3.SQLITE_CONSTRAINT_CHECK, stateCheck, mysqlCheck, "CHECK constraint failed")
}

// IsNotNullConstraintError reports if the error resulted from a NOT NULL violation.
func IsNotNullConstraintError(err error) bool {
	return is(err, sqlite3.SQLITE_CONSTRAINT_NOTNULL, stateNotNull, mysqlNotNull, "NOT NULL constraint failed")
}

// is matches err against an extended SQLite code, a SQLSTATE, MySQL error
// numbers and, for drivers that expose none of them, a message fragment.
func is(err error, code int, state string, numbers []uint16, msg string) bool {
	if err == nil {
		return false
	}
	if c, ok := Code(err); ok && c == code {
		return true
	}
	if e, ok := asError[*mysql.MySQLError](err); ok && slices.Contains(numbers, e.Number) {
		return true
	}
	if state != "" && State(err) == state {
		return true
	}
	return strings.Contains(err.Error(), msg)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	if err == nil {
		return target, false
	}
	ok := errors.As(err, &target)
	return target, ok
}
