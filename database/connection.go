// Package database defines the driver contract the ORM executes through,
// the raw and hydrated result types, the named-connection Registry, and a
// database/sql implementation of the contract.
package database

import (
	"context"
	"errors"

	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

var (
	// ErrModelNotFound is returned when a single-row lookup matches no row.
	ErrModelNotFound = errors.New("model not found")

	// ErrConnectionNotFound is returned when a connection name is not registered.
	ErrConnectionNotFound = errors.New("connection not found")
)

// Row is one raw result row keyed by column name.
type Row map[string]query.Value

// Connection executes compiled SQL. Each call runs exactly one statement.
type Connection interface {
	// Grammar returns the compiler for this connection's dialect.
	Grammar() *compile.Grammar

	// Select runs a query and returns every row in driver order.
	Select(ctx context.Context, sql string, bindings query.Bindings) ([]Row, error)

	// Insert runs an INSERT and returns the generated key reported by the
	// driver.
	Insert(ctx context.Context, sql string, bindings query.Bindings) (int64, error)

	// InsertReturning runs an INSERT ... RETURNING <key> and returns the
	// single value it yields.
	InsertReturning(ctx context.Context, sql string, bindings query.Bindings) (int64, error)

	// Update runs an UPDATE and returns the number of affected rows.
	Update(ctx context.Context, sql string, bindings query.Bindings) (int64, error)

	// Delete runs a DELETE and returns the number of affected rows.
	Delete(ctx context.Context, sql string, bindings query.Bindings) (int64, error)
}
