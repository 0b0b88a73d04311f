package sculptor

import (
	"context"
	"fmt"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

// AggregateAlias is the alias Count reads its result from.
const AggregateAlias = "aggregate"

// Builder accumulates a query against one entity and executes it on the
// entity's connection. A Builder is owned by one goroutine; the ...Async
// methods snapshot its state before returning.
type Builder[T any] struct {
	model *Model[T]
	q     *query.Query
	err   error
}

func newBuilder[T any](m *Model[T]) *Builder[T] {
	return &Builder[T]{
		model: m,
		q:     &query.Query{Table: m.entity.Table()},
	}
}

func (b *Builder[T]) clone() *Builder[T] {
	return &Builder[T]{model: b.model, q: b.q.Clone(), err: b.err}
}

// Select replaces the projection. No columns selects *.
func (b *Builder[T]) Select(columns ...string) *Builder[T] {
	b.q.Columns = append([]string(nil), columns...)
	return b
}

// Where adds an AND column = value predicate.
func (b *Builder[T]) Where(column string, value any) *Builder[T] {
	return b.where(column, query.OpEq, value, query.And)
}

// WhereOp adds an AND predicate with an explicit operator.
func (b *Builder[T]) WhereOp(column, operator string, value any) *Builder[T] {
	return b.where(column, operator, value, query.And)
}

// OrWhere adds an OR column = value predicate.
func (b *Builder[T]) OrWhere(column string, value any) *Builder[T] {
	return b.where(column, query.OpEq, value, query.Or)
}

// OrWhereOp adds an OR predicate with an explicit operator.
func (b *Builder[T]) OrWhereOp(column, operator string, value any) *Builder[T] {
	return b.where(column, operator, value, query.Or)
}

// where records the first conversion failure; it is returned by the next
// execution call before any I/O.
func (b *Builder[T]) where(column, operator string, value any, boolean query.Boolean) *Builder[T] {
	v, err := query.ValueOf(value)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("where %s: %w", column, err)
		}
		return b
	}
	b.q.Wheres = append(b.q.Wheres, query.NewWhere(column, operator, v, boolean))
	return b
}

// Take limits the number of rows. Values below 1 are ignored and leave any
// earlier limit in place.
func (b *Builder[T]) Take(n int) *Builder[T] {
	if n > 0 {
		b.q.Limit = n
	}
	return b
}

// Aggregate adds an aggregate to the select list. Once an aggregate is
// present the plain projection is not compiled.
func (b *Builder[T]) Aggregate(function, column, alias string) *Builder[T] {
	b.q.Aggregates = append(b.q.Aggregates, query.Aggregate{Function: function, Column: column, Alias: alias})
	return b
}

// Query returns a copy of the accumulated descriptor.
func (b *Builder[T]) Query() *query.Query {
	return b.q.Clone()
}

// ToSQL compiles the SELECT with the grammar of the entity's connection
// without executing it.
func (b *Builder[T]) ToSQL() (compile.Result, error) {
	_, conn, err := b.prepare()
	if err != nil {
		return compile.Result{}, err
	}
	return conn.Grammar().CompileSelect(b.q), nil
}

// =============================================================================
// Execution
// =============================================================================

// First returns the first matching model, with the limit forced to 1.
func (b *Builder[T]) First(ctx context.Context) (*T, error) {
	q := b.q.Clone()
	q.Limit = 1

	rows, err := b.selectRows(ctx, q)
	if err != nil {
		return nil, err
	}
	return database.NewResultSet(b.model.entity, rows).First()
}

// Get returns every matching model in driver order.
func (b *Builder[T]) Get(ctx context.Context) ([]*T, error) {
	rows, err := b.selectRows(ctx, b.q)
	if err != nil {
		return nil, err
	}
	return database.NewResultSet(b.model.entity, rows).All()
}

// Rows returns the raw rows of the SELECT without hydrating them.
func (b *Builder[T]) Rows(ctx context.Context) ([]database.Row, error) {
	return b.selectRows(ctx, b.q)
}

// Count returns COUNT(*) over the matching rows.
func (b *Builder[T]) Count(ctx context.Context) (int64, error) {
	q := b.q.Clone()
	q.Aggregates = []query.Aggregate{{Function: query.AggCount, Alias: AggregateAlias}}
	q.Limit = 0

	rows, err := b.selectRows(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0][AggregateAlias].Int64()
}

// Insert inserts values into the entity's table and returns the generated
// key. Predicates are ignored.
func (b *Builder[T]) Insert(ctx context.Context, values query.Values) (int64, error) {
	name, conn, err := b.prepare()
	if err != nil {
		return 0, err
	}

	q := b.q.Clone()
	q.Returning = b.model.entity.PrimaryKey().Column
	res := conn.Grammar().CompileInsert(q, values)

	b.model.registry.LogQuery(ctx, name, res.SQL, res.Bindings)
	if res.Returning {
		return conn.InsertReturning(ctx, res.SQL, res.Bindings)
	}
	return conn.Insert(ctx, res.SQL, res.Bindings)
}

// Update sets values on every row matching the predicates and returns the
// number of affected rows. Without predicates every row is updated.
func (b *Builder[T]) Update(ctx context.Context, values query.Values) (int64, error) {
	name, conn, err := b.prepare()
	if err != nil {
		return 0, err
	}

	res := conn.Grammar().CompileUpdate(b.q, values)

	b.model.registry.LogQuery(ctx, name, res.SQL, res.Bindings)
	return conn.Update(ctx, res.SQL, res.Bindings)
}

// Delete removes every row matching the predicates and returns the number of
// affected rows. Without predicates every row is deleted.
func (b *Builder[T]) Delete(ctx context.Context) (int64, error) {
	name, conn, err := b.prepare()
	if err != nil {
		return 0, err
	}

	res := conn.Grammar().CompileDelete(b.q)

	b.model.registry.LogQuery(ctx, name, res.SQL, res.Bindings)
	return conn.Delete(ctx, res.SQL, res.Bindings)
}

func (b *Builder[T]) selectRows(ctx context.Context, q *query.Query) ([]database.Row, error) {
	name, conn, err := b.prepare()
	if err != nil {
		return nil, err
	}

	res := conn.Grammar().CompileSelect(q)

	b.model.registry.LogQuery(ctx, name, res.SQL, res.Bindings)
	return conn.Select(ctx, res.SQL, res.Bindings)
}

// prepare reports a deferred conversion error or resolves the connection.
func (b *Builder[T]) prepare() (string, database.Connection, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	return b.connection()
}

func (b *Builder[T]) connection() (string, database.Connection, error) {
	name, conn, err := b.model.registry.Resolve(b.model.entity.Connection())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", b.model.entity.Name(), err)
	}
	return name, conn, nil
}

// =============================================================================
// Async
// =============================================================================

// FirstAsync runs First on a snapshot of the builder.
func (b *Builder[T]) FirstAsync(ctx context.Context) *Future[*T] {
	return goAsync(ctx, b.clone().First)
}

// GetAsync runs Get on a snapshot of the builder.
func (b *Builder[T]) GetAsync(ctx context.Context) *Future[[]*T] {
	return goAsync(ctx, b.clone().Get)
}

// CountAsync runs Count on a snapshot of the builder.
func (b *Builder[T]) CountAsync(ctx context.Context) *Future[int64] {
	return goAsync(ctx, b.clone().Count)
}

// InsertAsync runs Insert on a snapshot of the builder.
func (b *Builder[T]) InsertAsync(ctx context.Context, values query.Values) *Future[int64] {
	snap := b.clone()
	return goAsync(ctx, func(ctx context.Context) (int64, error) {
		return snap.Insert(ctx, values)
	})
}

// UpdateAsync runs Update on a snapshot of the builder.
func (b *Builder[T]) UpdateAsync(ctx context.Context, values query.Values) *Future[int64] {
	snap := b.clone()
	return goAsync(ctx, func(ctx context.Context) (int64, error) {
		return snap.Update(ctx, values)
	})
}

// DeleteAsync runs Delete on a snapshot of the builder.
func (b *Builder[T]) DeleteAsync(ctx context.Context) *Future[int64] {
	return goAsync(ctx, b.clone().Delete)
}
