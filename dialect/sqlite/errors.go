package sqlite

import (
	"fmt"
)

// Upsert stages, as reported by UpsertError.Op.
const (
	OpValidate = "validate"
	OpBegin    = "begin"
	OpInsert   = "insert"
	OpCommit   = "commit"
)

// UpsertError is returned by Adapter.Upsert when the batch could not be
// written. None of the batch's rows are visible after an UpsertError.
type UpsertError struct {
	Table string // Target table
	Op    string // Stage that failed
	Index int    // Position of Key in sorted key order, -1 outside the insert stage
	Key   string // Key being written when the insert stage failed
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *UpsertError) Error() string {
	if e.Op == OpInsert {
		return fmt.Sprintf("sqlite: upsert %s: key %q (#%d): %v", e.Table, e.Key, e.Index, e.Err)
	}
	return fmt.Sprintf("sqlite: upsert %s: %s: %v", e.Table, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *UpsertError) Unwrap() error {
	return e.Err
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Cause error // Original error that triggered rollback
	Err   error // Error returned by the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v: rollback failed: %v", e.Cause, e.Err)
}

// Unwrap returns both the original and the rollback error.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, e.Err}
}
