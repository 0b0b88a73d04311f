package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/query/compile"
)

type stubConnection struct {
	closed bool
}

func (s *stubConnection) Grammar() *compile.Grammar { return compile.New(nil) }
func (s *stubConnection) Select(context.Context, string, query.Bindings) ([]Row, error) {
	return nil, nil
}
func (s *stubConnection) Insert(context.Context, string, query.Bindings) (int64, error) {
	return 0, nil
}
func (s *stubConnection) InsertReturning(context.Context, string, query.Bindings) (int64, error) {
	return 0, nil
}
func (s *stubConnection) Update(context.Context, string, query.Bindings) (int64, error) {
	return 0, nil
}
func (s *stubConnection) Delete(context.Context, string, query.Bindings) (int64, error) {
	return 0, nil
}
func (s *stubConnection) Close() error {
	s.closed = true
	return nil
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()
	main, reporting := &stubConnection{}, &stubConnection{}

	if _, err := r.Connection(""); !errors.Is(err, ErrConnectionNotFound) {
		t.Fatalf("empty registry: expected ErrConnectionNotFound, got %v", err)
	}

	r.Register("main", main)
	r.Register("reporting", reporting)

	if r.Default() != "main" {
		t.Errorf("Default() = %q, want first registered", r.Default())
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"main", "reporting"}) {
		t.Errorf("Names() = %v", got)
	}

	conn, err := r.Connection("")
	if err != nil || conn != main {
		t.Errorf("Connection(\"\") = %v, %v", conn, err)
	}

	if err := r.SetDefault("reporting"); err != nil {
		t.Fatalf("SetDefault() error: %v", err)
	}
	name, conn, err := r.Resolve("")
	if err != nil || name != "reporting" || conn != reporting {
		t.Errorf("Resolve(\"\") = %q, %v, %v", name, conn, err)
	}

	if err := r.SetDefault("missing"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("SetDefault(missing): expected ErrConnectionNotFound, got %v", err)
	}
	if _, err := r.Connection("missing"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Connection(missing): expected ErrConnectionNotFound, got %v", err)
	}
}

func TestRegistry_LogQuery(t *testing.T) {
	r := NewRegistry()

	var logged []string
	r.SetQueryLogger(func(_ context.Context, connection, sql string, _ query.Bindings) {
		logged = append(logged, connection+": "+sql)
	})

	r.LogQuery(context.Background(), "main", "SELECT 1", nil)
	if len(logged) != 0 {
		t.Fatalf("logged while debug is off: %v", logged)
	}

	r.SetDebug(true)
	r.LogQuery(context.Background(), "main", "SELECT * FROM users", nil)
	if !reflect.DeepEqual(logged, []string{"main: SELECT * FROM users"}) {
		t.Errorf("logged = %v", logged)
	}
}

func TestRegistry_LogQueryDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	r := NewRegistry()
	r.SetDebug(true)
	r.LogQuery(context.Background(), "main", "DELETE FROM users", nil)

	if !strings.Contains(buf.String(), `"sql":"DELETE FROM users"`) {
		t.Errorf("expected sql attribute in %s", buf.String())
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	a, b := &stubConnection{}, &stubConnection{}
	r.Register("a", a)
	r.Register("b", b)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("every connection should be closed")
	}
}
