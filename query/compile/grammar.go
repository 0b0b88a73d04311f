package compile

import (
	"fmt"
	"strings"

	"github.com/samuelmaurice/sculptor/query"
)

// Result holds the output of compiling a Query to SQL.
type Result struct {
	// Kind is the statement type that was compiled.
	Kind query.QueryKind

	// SQL is the compiled statement text.
	SQL string

	// Bindings holds one entry per placeholder, in the order placeholders
	// appear in SQL: assigned values first, then WHERE values.
	Bindings query.Bindings

	// Returning is true when the statement reports the generated key through
	// a RETURNING clause.
	Returning bool
}

// Grammar compiles Query descriptors into SQL for one dialect.
// A Grammar holds no mutable state and is safe for concurrent use.
type Grammar struct {
	dialect Dialect
}

// New creates a grammar for the given dialect. A nil dialect selects Named.
func New(dialect Dialect) *Grammar {
	if dialect == nil {
		dialect = Named
	}
	return &Grammar{dialect: dialect}
}

// Dialect returns the grammar's dialect.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// component compiles one clause of a SELECT; an empty string omits the clause.
type component func(g *Grammar, s *compilerState, q *query.Query) string

// selectComponents is the fixed SELECT pipeline shared by every dialect.
var selectComponents = []component{
	(*Grammar).compileColumns,
	(*Grammar).compileFrom,
	(*Grammar).compileWheres,
	(*Grammar).compileLimit,
}

// CompileSelect compiles q to a SELECT statement.
func (g *Grammar) CompileSelect(q *query.Query) Result {
	s := g.newState()

	parts := make([]string, 0, len(selectComponents))
	for _, c := range selectComponents {
		if sql := c(g, s, q); sql != "" {
			parts = append(parts, sql)
		}
	}

	return Result{
		Kind:     query.SelectQuery,
		SQL:      strings.Join(parts, " "),
		Bindings: s.bindings,
	}
}

// CompileInsert compiles an INSERT of values into q's table. Column and
// placeholder order follow the order of values.
func (g *Grammar) CompileInsert(q *query.Query, values query.Values) Result {
	s := g.newState()

	placeholders := make([]string, len(values))
	for i, a := range values {
		placeholders[i] = s.bind(a.Column, a.Value)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.Table, strings.Join(values.Columns(), ", "), strings.Join(placeholders, ", "))

	returning := g.dialect.SupportsReturning() && q.Returning != ""
	if returning {
		sql += " RETURNING " + q.Returning
	}

	return Result{
		Kind:      query.InsertQuery,
		SQL:       sql,
		Bindings:  s.bindings,
		Returning: returning,
	}
}

// CompileUpdate compiles an UPDATE of q's table setting values, scoped by q's
// WHERE clauses. Without WHERE clauses every row is updated.
func (g *Grammar) CompileUpdate(q *query.Query, values query.Values) Result {
	s := g.newState()

	sets := make([]string, len(values))
	for i, a := range values {
		sets[i] = a.Column + " = " + s.bind(a.Column, a.Value)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", q.Table, strings.Join(sets, ", "))
	if where := g.compileWheres(s, q); where != "" {
		sql += " " + where
	}

	return Result{
		Kind:     query.UpdateQuery,
		SQL:      sql,
		Bindings: s.bindings,
	}
}

// CompileDelete compiles a DELETE from q's table scoped by q's WHERE clauses.
// Without WHERE clauses every row is deleted.
func (g *Grammar) CompileDelete(q *query.Query) Result {
	s := g.newState()

	sql := "DELETE FROM " + q.Table
	if where := g.compileWheres(s, q); where != "" {
		sql += " " + where
	}

	return Result{
		Kind:     query.DeleteQuery,
		SQL:      sql,
		Bindings: s.bindings,
	}
}

// =============================================================================
// SELECT components
// =============================================================================

// compileColumns compiles the aggregate clause when aggregates are present,
// otherwise the projection.
func (g *Grammar) compileColumns(s *compilerState, q *query.Query) string {
	if len(q.Aggregates) > 0 {
		aggs := make([]string, len(q.Aggregates))
		for i, a := range q.Aggregates {
			aggs[i] = compileAggregate(a)
		}
		return "SELECT " + strings.Join(aggs, ", ")
	}

	if len(q.Columns) == 0 {
		return "SELECT *"
	}
	return "SELECT " + strings.Join(q.Columns, ", ")
}

func compileAggregate(a query.Aggregate) string {
	column := a.Column
	if column == "" {
		column = "*"
	}
	sql := fmt.Sprintf("%s(%s)", strings.ToUpper(a.Function), column)
	if a.Alias != "" {
		sql += " as " + a.Alias
	}
	return sql
}

func (g *Grammar) compileFrom(s *compilerState, q *query.Query) string {
	return "FROM " + q.Table
}

// compileWheres renders every clause with its own leading boolean, then strips
// the boolean of the first clause.
func (g *Grammar) compileWheres(s *compilerState, q *query.Query) string {
	if len(q.Wheres) == 0 {
		return ""
	}

	parts := make([]string, len(q.Wheres))
	for i, w := range q.Wheres {
		parts[i] = fmt.Sprintf("%s %s %s %s", w.Boolean, w.Column, w.Operator, s.bind(w.Column, w.Value))
	}

	clauses := strings.Join(parts, " ")
	clauses = strings.TrimPrefix(clauses, string(q.Wheres[0].Boolean)+" ")
	return "WHERE " + clauses
}

func (g *Grammar) compileLimit(s *compilerState, q *query.Query) string {
	if q.Limit > 0 {
		return fmt.Sprintf("LIMIT %d", q.Limit)
	}
	return ""
}

// =============================================================================
// Bindings
// =============================================================================

// compilerState collects bindings while a single statement is compiled.
type compilerState struct {
	dialect  Dialect
	bindings query.Bindings
	taken    map[string]bool
}

func (g *Grammar) newState() *compilerState {
	return &compilerState{
		dialect: g.dialect,
		taken:   make(map[string]bool),
	}
}

// bind records a binding for column and returns its placeholder.
// The first binding for a column is named after it; later ones get _2, _3, ...
// suffixes so no two placeholders share a name.
func (s *compilerState) bind(column string, value query.Value) string {
	base := placeholderName(column)
	name := base
	for n := 2; s.taken[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	s.taken[name] = true
	s.bindings = append(s.bindings, query.Binding{Name: name, Value: value})
	return s.dialect.Placeholder(name, len(s.bindings))
}

// placeholderName maps a column reference to a bindable name:
// "users.id" -> "users_id".
func placeholderName(column string) string {
	if column == "" {
		return "p"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, column)
}
