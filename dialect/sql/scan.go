package sql

import (
	"context"
	"fmt"

	"github.com/syssam/picodb/dialect"
)

// QueryValue runs query on q and scans the first column of the first row into dest.
// It returns ErrNoRows (wrapped) if the query yields no rows.
func QueryValue(ctx context.Context, q dialect.ExecQuerier, query string, args []any, dest any) error {
	if args == nil {
		args = []any{}
	}
	rows := &Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return err
	}
	return ScanValue(rows, dest)
}

// ScanValue scans the first column of the first row into dest and closes rows.
func ScanValue(rows ColumnScanner, dest any) (err error) {
	defer func() { err = closeRows(rows, err) }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("dialect/sql: scan value: %w", err)
		}
		return fmt.Errorf("dialect/sql: scan value: %w", ErrNoRows)
	}
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: scan value: %w", err)
	}
	if n := len(columns); n != 1 {
		return fmt.Errorf("dialect/sql: scan value: expect exactly one column, got %d", n)
	}
	if err := rows.Scan(dest); err != nil {
		return fmt.Errorf("dialect/sql: scan value: %w", err)
	}
	return rows.Err()
}

// ScanMaps reads all rows as column-name to value mappings, in row order, and
// closes rows. Byte slices are returned as strings.
func ScanMaps(rows ColumnScanner) (_ []map[string]any, err error) {
	defer func() { err = closeRows(rows, err) }()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: scan maps: %w", err)
	}
	var (
		result = make([]map[string]any, 0)
		values = make([]any, len(columns))
		ptrs   = make([]any, len(columns))
	)
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan maps: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan maps: %w", err)
	}
	return result, nil
}
