package compile

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/samuelmaurice/sculptor/proptest"
	"github.com/samuelmaurice/sculptor/query"
)

func where(column, op string, v any, b query.Boolean) query.WhereClause {
	return query.NewWhere(column, op, query.MustValueOf(v), b)
}

func TestCompileSelect(t *testing.T) {
	tests := []struct {
		name  string
		query *query.Query
		want  string
		binds []string
	}{
		{
			name:  "bare table",
			query: &query.Query{Table: "users"},
			want:  "SELECT * FROM users",
		},
		{
			name:  "projection",
			query: &query.Query{Table: "users", Columns: []string{"id", "name"}},
			want:  "SELECT id, name FROM users",
		},
		{
			name: "single where",
			query: &query.Query{Table: "users", Wheres: []query.WhereClause{
				where("id", query.OpEq, 1, query.And),
			}},
			want:  "SELECT * FROM users WHERE id = @id",
			binds: []string{"id"},
		},
		{
			name: "and then or",
			query: &query.Query{Table: "users", Wheres: []query.WhereClause{
				where("a", query.OpEq, 1, query.And),
				where("b", query.OpEq, 2, query.Or),
			}},
			want:  "SELECT * FROM users WHERE a = @a OR b = @b",
			binds: []string{"a", "b"},
		},
		{
			name: "leading or is stripped",
			query: &query.Query{Table: "users", Wheres: []query.WhereClause{
				where("a", query.OpGt, 1, query.Or),
				where("b", query.OpLike, "x%", query.And),
			}},
			want:  "SELECT * FROM users WHERE a > @a AND b LIKE @b",
			binds: []string{"a", "b"},
		},
		{
			name: "limit",
			query: &query.Query{Table: "users", Limit: 1, Wheres: []query.WhereClause{
				where("id", query.OpEq, 7, query.And),
			}},
			want:  "SELECT * FROM users WHERE id = @id LIMIT 1",
			binds: []string{"id"},
		},
		{
			name:  "zero limit omitted",
			query: &query.Query{Table: "users", Limit: 0},
			want:  "SELECT * FROM users",
		},
		{
			name:  "negative limit omitted",
			query: &query.Query{Table: "users", Limit: -3},
			want:  "SELECT * FROM users",
		},
		{
			name: "aggregate replaces projection",
			query: &query.Query{
				Table:      "users",
				Columns:    []string{"id"},
				Aggregates: []query.Aggregate{{Function: "count", Alias: "aggregate"}},
			},
			want: "SELECT COUNT(*) as aggregate FROM users",
		},
		{
			name: "multiple aggregates",
			query: &query.Query{
				Table: "orders",
				Aggregates: []query.Aggregate{
					{Function: query.AggSum, Column: "total", Alias: "sum_total"},
					{Function: query.AggMax, Column: "total"},
				},
			},
			want: "SELECT SUM(total) as sum_total, MAX(total) FROM orders",
		},
		{
			name: "repeated column",
			query: &query.Query{Table: "users", Wheres: []query.WhereClause{
				where("age", query.OpGe, 18, query.And),
				where("age", query.OpLt, 65, query.And),
			}},
			want:  "SELECT * FROM users WHERE age >= @age AND age < @age_2",
			binds: []string{"age", "age_2"},
		},
		{
			name: "qualified column",
			query: &query.Query{Table: "users", Wheres: []query.WhereClause{
				where("users.id", query.OpEq, 1, query.And),
			}},
			want:  "SELECT * FROM users WHERE users.id = @users_id",
			binds: []string{"users_id"},
		},
	}

	g := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.CompileSelect(tt.query)
			if res.SQL != tt.want {
				t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, tt.want)
			}
			if res.Kind != query.SelectQuery {
				t.Errorf("Kind = %q", res.Kind)
			}
			if got := res.Bindings.Names(); len(got) != len(tt.binds) || (len(got) > 0 && !reflect.DeepEqual(got, tt.binds)) {
				t.Errorf("bindings = %v, want %v", got, tt.binds)
			}
		})
	}
}

func TestCompileSelect_BindingValues(t *testing.T) {
	q := &query.Query{Table: "users", Wheres: []query.WhereClause{
		where("name", query.OpEq, "Ann", query.And),
		where("name", query.OpEq, "Bob", query.Or),
	}}

	res := New(Named).CompileSelect(q)

	m := res.Bindings.Map()
	if !m["name"].Equal(query.Text("Ann")) || !m["name_2"].Equal(query.Text("Bob")) {
		t.Errorf("unexpected bindings: %v", m)
	}
}

func TestCompileInsert(t *testing.T) {
	values := query.Values{}.Set("name", "Ann").Set("age", 30)

	res := New(nil).CompileInsert(&query.Query{Table: "users"}, values)

	want := "INSERT INTO users (name, age) VALUES (@name, @age)"
	if res.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, want)
	}
	if res.Returning {
		t.Error("named dialect should not use RETURNING")
	}
	if got := res.Bindings.Args(); !reflect.DeepEqual(got, []any{"Ann", int64(30)}) {
		t.Errorf("Args() = %v", got)
	}
}

func TestCompileUpdate(t *testing.T) {
	values := query.Values{}.Set("name", "New")
	q := &query.Query{Table: "users", Wheres: []query.WhereClause{
		where("name", query.OpEq, "Old", query.And),
	}}

	res := New(nil).CompileUpdate(q, values)

	want := "UPDATE users SET name = @name WHERE name = @name_2"
	if res.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, want)
	}
	if got := res.Bindings.Args(); !reflect.DeepEqual(got, []any{"New", "Old"}) {
		t.Errorf("Args() = %v, want values before wheres", got)
	}
}

func TestCompileUpdate_NoWhere(t *testing.T) {
	values := query.Values{}.Set("active", false).Set("score", 0)

	res := New(nil).CompileUpdate(&query.Query{Table: "users"}, values)

	want := "UPDATE users SET active = @active, score = @score"
	if res.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, want)
	}
}

func TestCompileDelete(t *testing.T) {
	g := New(nil)

	res := g.CompileDelete(&query.Query{Table: "users", Wheres: []query.WhereClause{
		where("id", query.OpEq, 3, query.And),
	}})
	if want := "DELETE FROM users WHERE id = @id"; res.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, want)
	}

	res = g.CompileDelete(&query.Query{Table: "users"})
	if want := "DELETE FROM users"; res.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", res.SQL, want)
	}
}

// =============================================================================
// Dialects
// =============================================================================

func TestDialects_Select(t *testing.T) {
	q := &query.Query{Table: "users", Limit: 5, Wheres: []query.WhereClause{
		where("a", query.OpEq, 1, query.And),
		where("b", query.OpEq, 2, query.Or),
	}}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Named, "SELECT * FROM users WHERE a = @a OR b = @b LIMIT 5"},
		{MySQL, "SELECT * FROM users WHERE a = ? OR b = ? LIMIT 5"},
		{SQLite, "SELECT * FROM users WHERE a = ? OR b = ? LIMIT 5"},
		{Postgres, "SELECT * FROM users WHERE a = $1 OR b = $2 LIMIT 5"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			if got := New(tt.dialect).CompileSelect(q).SQL; got != tt.want {
				t.Errorf("SQL mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestDialects_InsertReturning(t *testing.T) {
	q := &query.Query{Table: "users", Returning: "id"}
	values := query.Values{}.Set("name", "Ann")

	pg := New(Postgres).CompileInsert(q, values)
	if want := "INSERT INTO users (name) VALUES ($1) RETURNING id"; pg.SQL != want {
		t.Errorf("postgres SQL mismatch\n got: %s\nwant: %s", pg.SQL, want)
	}
	if !pg.Returning {
		t.Error("postgres insert should report Returning")
	}

	my := New(MySQL).CompileInsert(q, values)
	if want := "INSERT INTO users (name) VALUES (?)"; my.SQL != want {
		t.Errorf("mysql SQL mismatch\n got: %s\nwant: %s", my.SQL, want)
	}
	if my.Returning {
		t.Error("mysql insert should not report Returning")
	}
}

func TestDialects_PostgresNumbersValuesBeforeWheres(t *testing.T) {
	q := &query.Query{Table: "users", Wheres: []query.WhereClause{
		where("id", query.OpEq, 9, query.And),
	}}
	values := query.Values{}.Set("name", "x").Set("age", 1)

	got := New(Postgres).CompileUpdate(q, values).SQL
	if want := "UPDATE users SET name = $1, age = $2 WHERE id = $3"; got != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		name string
		want Dialect
	}{
		{"", Named},
		{"named", Named},
		{"mysql", MySQL},
		{"postgres", Postgres},
		{"PostgreSQL", Postgres},
		{"sqlite3", SQLite},
	}
	for _, tt := range tests {
		got, err := DialectFor(tt.name)
		if err != nil {
			t.Fatalf("DialectFor(%q) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("DialectFor(%q) = %s, want %s", tt.name, got.Name(), tt.want.Name())
		}
	}

	if _, err := DialectFor("oracle"); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

// =============================================================================
// Properties
// =============================================================================

func genQuery(g *proptest.Generator) *query.Query {
	q := &query.Query{Table: proptest.Table(g), Limit: g.IntRange(-2, 10)}
	for _, col := range proptest.Slice(g, 6, proptest.QualifiedColumn) {
		q.Wheres = append(q.Wheres, query.NewWhere(
			col,
			proptest.Operator(g),
			query.Int(g.Int64Range(-100, 100)),
			query.Boolean(proptest.Boolean(g)),
		))
	}
	return q
}

func TestProperty_CompileIsDeterministic(t *testing.T) {
	proptest.Check(t, "same query compiles to same SQL", proptest.Config{Trials: 200}, func(g *proptest.Generator) (string, bool) {
		q := genQuery(g)
		a := New(nil).CompileSelect(q)
		b := New(nil).CompileSelect(q.Clone())
		return a.SQL, a.SQL == b.SQL && reflect.DeepEqual(a.Bindings, b.Bindings)
	})
}

func TestProperty_OneBindingPerWhere(t *testing.T) {
	proptest.Check(t, "placeholders are unique and match wheres", proptest.Config{Trials: 200}, func(g *proptest.Generator) (string, bool) {
		q := genQuery(g)
		res := New(nil).CompileSelect(q)

		if len(res.Bindings) != len(q.Wheres) {
			return res.SQL, false
		}
		seen := make(map[string]bool)
		for _, b := range res.Bindings {
			if seen[b.Name] || !strings.Contains(res.SQL, "@"+b.Name) {
				return res.SQL, false
			}
			seen[b.Name] = true
		}
		return res.SQL, true
	})
}

func TestProperty_WhereNeverStartsWithBoolean(t *testing.T) {
	proptest.Check(t, "first predicate has no boolean", proptest.Config{Trials: 200}, func(g *proptest.Generator) (string, bool) {
		res := New(nil).CompileSelect(genQuery(g))
		return res.SQL, !strings.Contains(res.SQL, "WHERE AND ") && !strings.Contains(res.SQL, "WHERE OR ")
	})
}

func TestProperty_LimitOnlyWhenPositive(t *testing.T) {
	proptest.Check(t, "limit rendered iff positive", proptest.Config{Trials: 200}, func(g *proptest.Generator) (string, bool) {
		q := genQuery(g)
		res := New(nil).CompileSelect(q)
		hasLimit := strings.HasSuffix(res.SQL, fmt.Sprintf(" LIMIT %d", q.Limit))
		return res.SQL, hasLimit == (q.Limit > 0)
	})
}
