package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/samuelmaurice/sculptor/dburl"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

// SQLConnection implements Connection on a database/sql pool. Every call
// checks out one *sql.Conn, runs one statement, and returns it to the pool.
type SQLConnection struct {
	db      *sql.DB
	grammar *compile.Grammar
}

// NewSQLConnection wraps an open database. A nil dialect selects
// compile.Named.
func NewSQLConnection(db *sql.DB, dialect compile.Dialect) *SQLConnection {
	return &SQLConnection{db: db, grammar: compile.New(dialect)}
}

// Open opens and pings the database at dbURL. The driver and dialect are
// chosen from the URL scheme.
func Open(ctx context.Context, dbURL string) (*SQLConnection, error) {
	target, err := dburl.Resolve(dbURL)
	if err != nil {
		return nil, err
	}
	dialect, err := compile.DialectFor(target.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", target.Dialect, err)
	}
	if strings.Contains(target.DSN, ":memory:") {
		// Each connection to an in-memory SQLite database is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", target.Dialect, err)
	}

	return NewSQLConnection(db, dialect), nil
}

func (c *SQLConnection) Grammar() *compile.Grammar { return c.grammar }

// Dialect returns the connection's SQL dialect.
func (c *SQLConnection) Dialect() compile.Dialect { return c.grammar.Dialect() }

// DB returns the underlying pool.
func (c *SQLConnection) DB() *sql.DB { return c.db }

// Ping verifies the database is reachable.
func (c *SQLConnection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (c *SQLConnection) Close() error {
	return c.db.Close()
}

// args converts bindings to driver arguments: positional in binding order,
// or sql.NamedArg for dialects that bind by name.
func (c *SQLConnection) args(bindings query.Bindings) []any {
	if !c.Dialect().NamedParams() {
		return bindings.Args()
	}
	args := make([]any, len(bindings))
	for i, b := range bindings {
		args[i] = sql.Named(b.Name, b.Value.Any())
	}
	return args
}

func (c *SQLConnection) Select(ctx context.Context, sqlText string, bindings query.Bindings) ([]Row, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText, c.args(bindings)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			v, err := query.ValueOf(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			row[col] = v
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Insert returns the key reported by LastInsertId.
func (c *SQLConnection) Insert(ctx context.Context, sqlText string, bindings query.Bindings) (int64, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, sqlText, c.args(bindings)...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertReturning scans the key produced by the statement's RETURNING clause.
func (c *SQLConnection) InsertReturning(ctx context.Context, sqlText string, bindings query.Bindings) (int64, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var id int64
	if err := conn.QueryRowContext(ctx, sqlText, c.args(bindings)...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *SQLConnection) Update(ctx context.Context, sqlText string, bindings query.Bindings) (int64, error) {
	return c.exec(ctx, sqlText, bindings)
}

func (c *SQLConnection) Delete(ctx context.Context, sqlText string, bindings query.Bindings) (int64, error) {
	return c.exec(ctx, sqlText, bindings)
}

func (c *SQLConnection) exec(ctx context.Context, sqlText string, bindings query.Bindings) (int64, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, sqlText, c.args(bindings)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
