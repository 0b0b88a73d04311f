package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samuelmaurice/sculptor/cli"
	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

// queryArgs is the parsed form of "<table> [column<op>value ...] [flags]".
type queryArgs struct {
	Query      *query.Query
	Dialect    string
	Connection string
}

// operators in match order: two-character operators first.
var operators = []string{">=", "<=", "<>", "!=", "=", ">", "<"}

func parseQueryArgs(args []string) (*queryArgs, error) {
	qa := &queryArgs{Query: &query.Query{}}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--") {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			if err := qa.setFlag(arg, args[i]); err != nil {
				return nil, err
			}
			continue
		}

		if qa.Query.Table == "" {
			qa.Query.Table = arg
			continue
		}

		w, err := parseCondition(arg)
		if err != nil {
			return nil, err
		}
		qa.Query.Wheres = append(qa.Query.Wheres, w)
	}

	if qa.Query.Table == "" {
		return nil, errors.New("table name is required")
	}
	return qa, nil
}

func (qa *queryArgs) setFlag(flag, value string) error {
	switch flag {
	case "--limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("--limit: %q is not a non-negative integer", value)
		}
		qa.Query.Limit = n
	case "--columns":
		for _, c := range strings.Split(value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				qa.Query.Columns = append(qa.Query.Columns, c)
			}
		}
	case "--dialect":
		qa.Dialect = value
	case "--connection":
		qa.Connection = value
	default:
		return fmt.Errorf("unknown flag: %s", flag)
	}
	return nil
}

// parseCondition parses "column<op>value" into an AND predicate.
func parseCondition(arg string) (query.WhereClause, error) {
	for i := range arg {
		for _, op := range operators {
			if !strings.HasPrefix(arg[i:], op) {
				continue
			}
			column := strings.TrimSpace(arg[:i])
			if column == "" {
				return query.WhereClause{}, fmt.Errorf("condition %q has no column", arg)
			}
			if op == "!=" {
				op = query.OpNe
			}
			value := parseLiteral(arg[i+len(op):])
			return query.NewWhere(column, op, value, query.And), nil
		}
	}
	return query.WhereClause{}, fmt.Errorf("condition %q has no operator", arg)
}

// parseLiteral reads a command-line value as the narrowest scalar it spells.
func parseLiteral(s string) query.Value {
	switch strings.ToLower(s) {
	case "null":
		return query.Null()
	case "true":
		return query.Bool(true)
	case "false":
		return query.Bool(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return query.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return query.Float(f)
	}
	return query.Text(s)
}

// compileCmd implements "sculptor compile".
func compileCmd(args []string) {
	qa, err := parseQueryArgs(args)
	if err != nil {
		cli.FatalErr("invalid arguments", err)
	}

	dialect, err := compile.DialectFor(qa.Dialect)
	if err != nil {
		cli.FatalErr("invalid --dialect", err)
	}

	res := compile.New(dialect).CompileSelect(qa.Query)
	cli.Info(res.SQL)
	for _, b := range res.Bindings {
		cli.Infof("  %s = %s (%s)", b.Name, b.Value.String(), b.Value.Kind())
	}
}

// selectCmd implements "sculptor select".
func selectCmd(args []string) {
	qa, err := parseQueryArgs(args)
	if err != nil {
		cli.FatalErr("invalid arguments", err)
	}

	cfg := loadConfig()
	registry, err := cfg.Open(context.Background())
	if err != nil {
		cli.FatalErr("failed to open connections", err)
	}

	rows, err := runSelect(context.Background(), registry, qa)
	if cerr := registry.Close(); cerr != nil {
		cli.Warnf("failed to close connections: %v", cerr)
	}
	if err != nil {
		cli.FatalErr("select failed", err)
	}

	if len(rows) == 0 {
		cli.Info("(no rows)")
		return
	}
	header := rowColumns(qa.Query.Columns, rows)
	cli.Table(header, formatRows(header, rows))
	cli.Infof("(%d rows)", len(rows))
}

// runSelect compiles qa for its connection and runs it.
func runSelect(ctx context.Context, registry *database.Registry, qa *queryArgs) ([]database.Row, error) {
	name, conn, err := registry.Resolve(qa.Connection)
	if err != nil {
		return nil, err
	}

	res := conn.Grammar().CompileSelect(qa.Query)
	registry.LogQuery(ctx, name, res.SQL, res.Bindings)
	return conn.Select(ctx, res.SQL, res.Bindings)
}

// rowColumns returns the requested columns, or every column seen in rows
// sorted by name.
func rowColumns(requested []string, rows []database.Row) []string {
	if len(requested) > 0 {
		return requested
	}
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func formatRows(header []string, rows []database.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(header))
		for j, c := range header {
			if v, ok := r[c]; ok {
				cells[j] = v.String()
			}
		}
		out[i] = cells
	}
	return out
}
