// Package query holds the immutable terms a query is described with: scalar
// values, WHERE predicates, aggregates, and the Query descriptor the compiler
// turns into SQL.
package query

import "fmt"

// Boolean joins a predicate to the ones before it.
type Boolean string

const (
	And Boolean = "AND"
	Or  Boolean = "OR"
)

// Comparison operators accepted by WHERE clauses. Any other operator string is
// passed through to the SQL unchanged.
const (
	OpEq   = "="
	OpNe   = "<>"
	OpLt   = "<"
	OpLe   = "<="
	OpGt   = ">"
	OpGe   = ">="
	OpLike = "LIKE"
)

// WhereClause is a single predicate: Column Operator Value, joined to the
// previous predicate with Boolean.
type WhereClause struct {
	Column   string
	Operator string
	Value    Value
	Boolean  Boolean
}

// NewWhere creates a predicate. An empty boolean defaults to AND.
func NewWhere(column, operator string, value Value, boolean Boolean) WhereClause {
	if boolean == "" {
		boolean = And
	}
	return WhereClause{Column: column, Operator: operator, Value: value, Boolean: boolean}
}

// String renders the predicate with a named placeholder for debugging.
func (w WhereClause) String() string {
	return fmt.Sprintf("%s %s %s @%s", w.Boolean, w.Column, w.Operator, w.Column)
}

// Aggregate function names.
const (
	AggCount = "COUNT"
	AggSum   = "SUM"
	AggAvg   = "AVG"
	AggMin   = "MIN"
	AggMax   = "MAX"
)

// Aggregate is an aggregate function applied to a column and exposed under an
// alias, e.g. COUNT(*) as aggregate.
type Aggregate struct {
	Function string
	Column   string
	Alias    string
}

// QueryKind identifies the type of statement a Query is compiled to.
type QueryKind string

const (
	SelectQuery QueryKind = "select"
	InsertQuery QueryKind = "insert"
	UpdateQuery QueryKind = "update"
	DeleteQuery QueryKind = "delete"
)

// Query is the descriptor accumulated by a builder. The zero value selects
// every column of an unnamed table.
type Query struct {
	Table      string
	Columns    []string
	Aggregates []Aggregate
	Wheres     []WhereClause
	Limit      int

	// Returning names the generated-key column for dialects that report
	// inserted keys through RETURNING.
	Returning string
}

// Clone returns a deep copy so a compiled snapshot is not affected by later
// builder calls.
func (q *Query) Clone() *Query {
	c := *q
	c.Columns = append([]string(nil), q.Columns...)
	c.Aggregates = append([]Aggregate(nil), q.Aggregates...)
	c.Wheres = append([]WhereClause(nil), q.Wheres...)
	return &c
}

// Assignment is one column = value pair of an INSERT or UPDATE.
type Assignment struct {
	Column string
	Value  Value
}

// Values is an ordered list of assignments. Column order in compiled INSERT
// and UPDATE statements follows slice order.
type Values []Assignment

// Set appends column = v and returns the extended list. v is converted with
// MustValueOf, so it panics on unsupported Go types.
func (vs Values) Set(column string, v any) Values {
	return append(vs, Assignment{Column: column, Value: MustValueOf(v)})
}

// Columns returns the assignment columns in order.
func (vs Values) Columns() []string {
	cols := make([]string, len(vs))
	for i, a := range vs {
		cols[i] = a.Column
	}
	return cols
}

// Get returns the value assigned to column.
func (vs Values) Get(column string) (Value, bool) {
	for _, a := range vs {
		if a.Column == column {
			return a.Value, true
		}
	}
	return Null(), false
}

// Binding pairs a placeholder name with the value bound to it.
type Binding struct {
	Name  string
	Value Value
}

// Bindings lists placeholder bindings in the order placeholders appear in the
// compiled SQL.
type Bindings []Binding

// Map returns the bindings keyed by placeholder name.
func (bs Bindings) Map() map[string]Value {
	m := make(map[string]Value, len(bs))
	for _, b := range bs {
		m[b.Name] = b.Value
	}
	return m
}

// Names returns the placeholder names in order.
func (bs Bindings) Names() []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return names
}

// Args returns the bound values as plain Go values, in order.
func (bs Bindings) Args() []any {
	args := make([]any, len(bs))
	for i, b := range bs {
		args[i] = b.Value.Any()
	}
	return args
}
