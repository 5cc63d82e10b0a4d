package sql

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// timeFormat is the literal format used for time.Time arguments.
const timeFormat = "2006-01-02 15:04:05.999999999-07:00"

// Interpolate replaces every "?" placeholder of query with the SQL literal of
// the matching argument. Placeholders inside quoted strings, quoted
// identifiers and comments are left untouched.
//
// The result is meant for diagnostics (EXPLAIN, logging) and must not be used
// to execute statements built from untrusted input.
func Interpolate(query string, args []any) (string, error) {
	if len(args) == 0 && !strings.ContainsRune(query, '?') {
		return query, nil
	}
	var (
		b strings.Builder
		n int
		// skip is the byte sequence closing the quoted text or comment
		// being copied, empty outside of them.
		skip string
	)
	b.Grow(len(query) + 8*len(args))
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case skip != "":
			if strings.HasPrefix(query[i:], skip) {
				b.WriteString(skip)
				i += len(skip) - 1
				skip = ""
				continue
			}
		case c == '\'' || c == '"' || c == '`':
			skip = string(c)
		case strings.HasPrefix(query[i:], "--"):
			skip = "\n"
		case strings.HasPrefix(query[i:], "/*"):
			b.WriteString("/*")
			i++
			skip = "*/"
			continue
		case c == '?':
			if n >= len(args) {
				return "", fmt.Errorf("dialect/sql: interpolate: not enough arguments, got %d", len(args))
			}
			lit, err := Literal(args[n])
			if err != nil {
				return "", fmt.Errorf("dialect/sql: interpolate: argument %d: %w", n, err)
			}
			b.WriteString(lit)
			n++
			continue
		}
		b.WriteByte(c)
	}
	if n != len(args) {
		return "", fmt.Errorf("dialect/sql: interpolate: %d placeholders for %d arguments", n, len(args))
	}
	return b.String(), nil
}

// Literal encodes v as an SQL literal.
func Literal(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "NULL", nil
	}
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(v), nil
	case []byte:
		if v == nil {
			return "NULL", nil
		}
		return "X'" + hex.EncodeToString(v) + "'", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return quoteString(v.Format(timeFormat)), nil
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return "", err
		}
		return Literal(dv)
	}
	// Named types over a basic kind, e.g. "type Status string".
	switch rv.Kind() {
	case reflect.Pointer:
		return Literal(rv.Elem().Interface())
	case reflect.String:
		return quoteString(rv.String()), nil
	case reflect.Bool:
		return Literal(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Literal(rv.Bytes())
		}
	}
	return "", fmt.Errorf("unsupported type %T", v)
}

// quoteString quotes s as a standard SQL string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
