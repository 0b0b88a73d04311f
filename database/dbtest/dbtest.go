// Package dbtest provides an in-memory database.Connection that records
// every statement and replays scripted results.
package dbtest

import (
	"context"
	"sync"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

// Statement is one executed call.
type Statement struct {
	Kind     query.QueryKind
	SQL      string
	Bindings query.Bindings

	// Returning is set for inserts executed through InsertReturning.
	Returning bool
}

// Connection is a scripted fake driver. Selects return queued result sets in
// order (or nothing once the queue is empty), inserts return increasing keys
// starting at 1, and updates and deletes report Affected rows.
type Connection struct {
	grammar *compile.Grammar

	mu         sync.Mutex
	statements []Statement
	results    [][]database.Row
	nextID     int64
	affected   int64
	err        error
}

var _ database.Connection = (*Connection)(nil)

// New creates a fake connection compiling with dialect (nil for Named).
func New(dialect compile.Dialect) *Connection {
	return &Connection{grammar: compile.New(dialect), affected: 1}
}

// QueueRows appends one result set returned by a later Select.
func (c *Connection) QueueRows(rows ...database.Row) *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, rows)
	return c
}

// SetNextID sets the key returned by the next Insert.
func (c *Connection) SetNextID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID = id - 1
}

// SetAffected sets the row count Update and Delete report.
func (c *Connection) SetAffected(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.affected = n
}

// FailWith makes every later call fail with err.
func (c *Connection) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Statements returns every executed statement in order.
func (c *Connection) Statements() []Statement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Statement(nil), c.statements...)
}

// Count returns how many statements of kind were executed.
func (c *Connection) Count(kind query.QueryKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.statements {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent statement.
func (c *Connection) Last() (Statement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.statements) == 0 {
		return Statement{}, false
	}
	return c.statements[len(c.statements)-1], true
}

// Reset forgets recorded statements and queued results.
func (c *Connection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = nil
	c.results = nil
}

func (c *Connection) Grammar() *compile.Grammar { return c.grammar }

func (c *Connection) Select(ctx context.Context, sql string, bindings query.Bindings) ([]database.Row, error) {
	if err := c.record(ctx, query.SelectQuery, sql, bindings); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return nil, nil
	}
	rows := c.results[0]
	c.results = c.results[1:]
	return rows, nil
}

func (c *Connection) Insert(ctx context.Context, sql string, bindings query.Bindings) (int64, error) {
	return c.insert(ctx, Statement{Kind: query.InsertQuery, SQL: sql, Bindings: bindings})
}

func (c *Connection) InsertReturning(ctx context.Context, sql string, bindings query.Bindings) (int64, error) {
	return c.insert(ctx, Statement{Kind: query.InsertQuery, SQL: sql, Bindings: bindings, Returning: true})
}

func (c *Connection) insert(ctx context.Context, st Statement) (int64, error) {
	if err := c.recordStatement(ctx, st); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return c.nextID, nil
}

func (c *Connection) Update(ctx context.Context, sql string, bindings query.Bindings) (int64, error) {
	if err := c.record(ctx, query.UpdateQuery, sql, bindings); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.affected, nil
}

func (c *Connection) Delete(ctx context.Context, sql string, bindings query.Bindings) (int64, error) {
	if err := c.record(ctx, query.DeleteQuery, sql, bindings); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.affected, nil
}

func (c *Connection) record(ctx context.Context, kind query.QueryKind, sql string, bindings query.Bindings) error {
	return c.recordStatement(ctx, Statement{Kind: kind, SQL: sql, Bindings: bindings})
}

func (c *Connection) recordStatement(ctx context.Context, st Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = append(c.statements, st)
	return c.err
}
