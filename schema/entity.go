// Package schema declares how a Go struct maps to a table: its name, table,
// connection, primary key, and one Field per mapped property.
//
// Entities are built once at startup and are read-only afterwards:
//
//	var Users = schema.MustNew([]schema.Field[User]{
//	    schema.Integer("Id", func(u *User) *int64 { return &u.Id }),
//	    schema.String("Name", func(u *User) *string { return &u.Name }),
//	}, schema.Connection("main"))
package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/samuelmaurice/sculptor/dbstrings"
	"github.com/samuelmaurice/sculptor/query"
)

// ErrInvalidEntity is returned when an entity declaration is inconsistent.
var ErrInvalidEntity = errors.New("invalid entity")

// DefaultPrimaryKey is the primary-key property used when none is declared.
const DefaultPrimaryKey = "Id"

// Option customizes an entity.
type Option func(*options)

type options struct {
	name       string
	table      string
	connection string
	primaryKey string
}

// Name overrides the entity name, which defaults to the Go type name.
func Name(name string) Option {
	return func(o *options) { o.name = name }
}

// Table overrides the table name, which defaults to the pluralized
// snake_case entity name.
func Table(table string) Option {
	return func(o *options) { o.table = table }
}

// Connection binds the entity to a named registry connection. Empty means
// the registry default.
func Connection(name string) Option {
	return func(o *options) { o.connection = name }
}

// PrimaryKey overrides the primary-key property.
func PrimaryKey(field string) Option {
	return func(o *options) { o.primaryKey = field }
}

// Entity is the mapping metadata for T.
type Entity[T any] struct {
	name       string
	table      string
	connection string
	primaryKey int

	fields   []Field[T]
	byName   map[string]int
	byColumn map[string]int
}

// New builds the entity for T from its fields.
func New[T any](fields []Field[T], opts ...Option) (*Entity[T], error) {
	o := options{
		name:       reflect.TypeFor[T]().Name(),
		primaryKey: DefaultPrimaryKey,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		return nil, fmt.Errorf("%w: entity name is required for unnamed types", ErrInvalidEntity)
	}
	if o.table == "" {
		o.table = dbstrings.ToTableName(o.name)
	}

	e := &Entity[T]{
		name:       o.name,
		table:      o.table,
		connection: o.connection,
		fields:     fields,
		byName:     make(map[string]int, len(fields)),
		byColumn:   make(map[string]int, len(fields)),
	}

	for i, f := range fields {
		switch {
		case f.Name == "" || f.Column == "":
			return nil, fmt.Errorf("%w: %s: field %d has no name or column", ErrInvalidEntity, o.name, i)
		case f.Get == nil || f.Set == nil:
			return nil, fmt.Errorf("%w: %s.%s: missing accessor", ErrInvalidEntity, o.name, f.Name)
		}
		if _, dup := e.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidEntity, o.name, f.Name)
		}
		if _, dup := e.byColumn[f.Column]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidEntity, o.name, f.Column)
		}
		e.byName[f.Name] = i
		e.byColumn[f.Column] = i
	}

	pk, ok := e.byName[o.primaryKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s: primary key field %q is not declared", ErrInvalidEntity, o.name, o.primaryKey)
	}
	e.primaryKey = pk

	return e, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](fields []Field[T], opts ...Option) *Entity[T] {
	e, err := New(fields, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Entity[T]) Name() string       { return e.name }
func (e *Entity[T]) Table() string      { return e.table }
func (e *Entity[T]) Connection() string { return e.connection }

// Fields returns the fields in declaration order.
func (e *Entity[T]) Fields() []Field[T] {
	return e.fields
}

// Columns returns the mapped columns in declaration order.
func (e *Entity[T]) Columns() []string {
	cols := make([]string, len(e.fields))
	for i, f := range e.fields {
		cols[i] = f.Column
	}
	return cols
}

// Field looks a field up by property name.
func (e *Entity[T]) Field(name string) (Field[T], bool) {
	i, ok := e.byName[name]
	if !ok {
		return Field[T]{}, false
	}
	return e.fields[i], true
}

// FieldByColumn looks a field up by column name.
func (e *Entity[T]) FieldByColumn(column string) (Field[T], bool) {
	i, ok := e.byColumn[column]
	if !ok {
		return Field[T]{}, false
	}
	return e.fields[i], true
}

// Resolve looks a field up by property name, then by column.
func (e *Entity[T]) Resolve(key string) (Field[T], bool) {
	if f, ok := e.Field(key); ok {
		return f, true
	}
	return e.FieldByColumn(key)
}

// PrimaryKey returns the primary-key field.
func (e *Entity[T]) PrimaryKey() Field[T] {
	return e.fields[e.primaryKey]
}

// Key returns the primary-key value of m.
func (e *Entity[T]) Key(m *T) (query.Value, error) {
	pk := e.PrimaryKey()
	v, err := pk.Get(m)
	if err != nil {
		return v, fmt.Errorf("%s.%s: %w", e.name, pk.Name, err)
	}
	return v, nil
}

// Persisted reports whether m has a non-zero primary key. A key too large
// to read is non-zero.
func (e *Entity[T]) Persisted(m *T) bool {
	v, err := e.Key(m)
	return err != nil || !v.IsZero()
}

// Values returns every mapped field of m except the primary key, in
// declaration order.
func (e *Entity[T]) Values(m *T) (query.Values, error) {
	vs := make(query.Values, 0, len(e.fields)-1)
	for i, f := range e.fields {
		if i == e.primaryKey {
			continue
		}
		v, err := f.Get(m)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e.name, f.Name, err)
		}
		vs = append(vs, query.Assignment{Column: f.Column, Value: v})
	}
	return vs, nil
}
