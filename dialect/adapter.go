package dialect

import "context"

// Adapter is the capability set a dialect exposes to the generic SQL layer.
//
// Implementations hold a non-owning reference to a Driver and translate each
// capability into dialect-specific SQL text or engine commands. Errors raised
// by the held driver are returned unchanged (wrapped) to the caller.
type Adapter interface {
	// RequiredAttributes lists the settings keys the connection setup must
	// supply before the adapter can be constructed.
	RequiredAttributes() []string

	// EnableForeignKeys turns referential-integrity enforcement on.
	EnableForeignKeys(ctx context.Context) error
	// DisableForeignKeys turns referential-integrity enforcement off.
	DisableForeignKeys(ctx context.Context) error

	// IsDuplicateKeyError reports whether the numeric error code denotes
	// an integrity-constraint violation.
	IsDuplicateKeyError(code int) bool

	// Escape quotes an identifier for the dialect.
	Escape(identifier string) string
	// Cast returns the expression casting value to typ.
	Cast(value, typ string, option ...string) string

	// Date returns the SQL expression for the current date.
	Date() string
	// Timestamp returns the SQL expression for the current timestamp.
	Timestamp() string
	// DateDiff returns the SQL expression computing the difference between
	// two dates in the given unit. The boolean is false when the dialect has
	// no native expression.
	DateDiff(unit, date1, date2 string) (string, bool)
	// Operator translates a non-standard operator. The boolean is false when
	// the operator token should be used verbatim.
	Operator(operator string) (string, bool)

	// LastID returns the row id of the most recent insert on the connection.
	LastID(ctx context.Context) (int64, error)
	// SchemaVersion returns the schema version stored in the database.
	SchemaVersion(ctx context.Context) (int32, error)
	// SetSchemaVersion stores the schema version in the database.
	SetSchemaVersion(ctx context.Context, version int32) error

	// Upsert inserts or replaces every key/value pair of dict into a two
	// column table within a single transaction.
	Upsert(ctx context.Context, table, keyColumn, valueColumn string, dict map[string]string) error
	// Explain returns the query plan rows of the interpolated statement.
	Explain(ctx context.Context, query string, args []any) ([]map[string]any, error)
	// DatabaseVersion returns the version reported by the database engine.
	DatabaseVersion(ctx context.Context) (string, error)
}
