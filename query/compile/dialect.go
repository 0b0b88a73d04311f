package compile

import (
	"fmt"
	"strings"
)

// Dialect customizes the individual steps of compilation that differ between
// databases. The order in which statement components are assembled is owned by
// Grammar and is the same for every dialect.
type Dialect interface {
	// Name returns the dialect name for debugging/logging.
	Name() string

	// Placeholder renders the placeholder for a binding.
	// name is the binding name, index its 1-based position in the statement.
	Placeholder(name string, index int) string

	// NamedParams reports whether drivers must receive bindings by name
	// rather than by position.
	NamedParams() bool

	// SupportsReturning returns true if the dialect reports generated keys
	// through an INSERT ... RETURNING clause instead of a last-insert-id.
	SupportsReturning() bool
}

// =============================================================================
// Named Dialect
// =============================================================================

// NamedDialect renders @name placeholders and binds by name.
type NamedDialect struct{}

func (d *NamedDialect) Name() string { return "named" }

func (d *NamedDialect) Placeholder(name string, index int) string {
	return "@" + name
}

func (d *NamedDialect) NamedParams() bool { return true }

func (d *NamedDialect) SupportsReturning() bool { return false }

// =============================================================================
// MySQL Dialect
// =============================================================================

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string { return "mysql" }

func (d *MySQLDialect) Placeholder(name string, index int) string {
	return "?"
}

func (d *MySQLDialect) NamedParams() bool { return false }

func (d *MySQLDialect) SupportsReturning() bool {
	// MySQL uses LAST_INSERT_ID() instead of RETURNING.
	return false
}

// =============================================================================
// Postgres Dialect
// =============================================================================

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Placeholder(name string, index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) NamedParams() bool { return false }

func (d *PostgresDialect) SupportsReturning() bool { return true }

// =============================================================================
// SQLite Dialect
// =============================================================================

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(name string, index int) string {
	return "?"
}

func (d *SQLiteDialect) NamedParams() bool { return false }

func (d *SQLiteDialect) SupportsReturning() bool { return false }

// Dialect instances for convenience.
var (
	// Named renders @name placeholders. It is the default dialect.
	Named Dialect = &NamedDialect{}

	// MySQL is the MySQL dialect.
	MySQL Dialect = &MySQLDialect{}

	// Postgres is the PostgreSQL dialect.
	Postgres Dialect = &PostgresDialect{}

	// SQLite is the SQLite dialect.
	SQLite Dialect = &SQLiteDialect{}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "named":
		return Named, nil
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unknown dialect: %s", name)
	}
}
