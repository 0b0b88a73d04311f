package schema

import (
	"fmt"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/samuelmaurice/sculptor/dbstrings"
	"github.com/samuelmaurice/sculptor/query"
)

// Field maps one property of T to a table column.
type Field[T any] struct {
	// Name is the Go property name, e.g. "UserId".
	Name string

	// Column is the table column, snake_case(Name) unless overridden.
	Column string

	// Get reads the property from an instance. It fails when the property
	// holds a value outside the Value domain.
	Get func(*T) (query.Value, error)

	// Set coerces v to the property's type and writes it.
	Set func(*T, query.Value) error
}

// FieldOption customizes a field.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	column string
}

// Column overrides the column a field maps to.
func Column(name string) FieldOption {
	return func(o *fieldOptions) {
		o.column = name
	}
}

// NewField creates a field from explicit accessors.
func NewField[T any](name string, get func(*T) (query.Value, error), set func(*T, query.Value) error, opts ...FieldOption) Field[T] {
	o := fieldOptions{column: dbstrings.ToColumnName(name)}
	for _, opt := range opts {
		opt(&o)
	}
	return Field[T]{Name: name, Column: o.column, Get: get, Set: set}
}

// Integer maps an integer property. Reading an unsigned value above
// math.MaxInt64, or setting a value that does not fit N, fails with a
// coercion error.
func Integer[T any, N constraints.Integer](name string, ptr func(*T) *N, opts ...FieldOption) Field[T] {
	return NewField(name,
		func(m *T) (query.Value, error) {
			n := *ptr(m)
			if n < 0 {
				return query.Int(int64(n)), nil
			}
			return query.Uint(uint64(n))
		},
		func(m *T, v query.Value) error {
			i, err := v.Int64()
			if err != nil {
				return err
			}
			n := N(i)
			if int64(n) != i || (n < 0) != (i < 0) {
				return &query.CoercionError{From: v.Kind(), To: fmt.Sprintf("%T", n), Err: fmt.Errorf("%d overflows", i)}
			}
			*ptr(m) = n
			return nil
		},
		opts...)
}

// Float maps a floating-point property.
func Float[T any, F constraints.Float](name string, ptr func(*T) *F, opts ...FieldOption) Field[T] {
	return NewField(name,
		func(m *T) (query.Value, error) {
			return query.Float(float64(*ptr(m))), nil
		},
		func(m *T, v query.Value) error {
			f, err := v.Float64()
			if err != nil {
				return err
			}
			*ptr(m) = F(f)
			return nil
		},
		opts...)
}

// String maps a string property.
func String[T any, S ~string](name string, ptr func(*T) *S, opts ...FieldOption) Field[T] {
	return NewField(name,
		func(m *T) (query.Value, error) {
			return query.Text(string(*ptr(m))), nil
		},
		func(m *T, v query.Value) error {
			s, err := v.Text()
			if err != nil {
				return err
			}
			*ptr(m) = S(s)
			return nil
		},
		opts...)
}

// Bool maps a boolean property.
func Bool[T any, B ~bool](name string, ptr func(*T) *B, opts ...FieldOption) Field[T] {
	return NewField(name,
		func(m *T) (query.Value, error) {
			return query.Bool(bool(*ptr(m))), nil
		},
		func(m *T, v query.Value) error {
			b, err := v.Boolean()
			if err != nil {
				return err
			}
			*ptr(m) = B(b)
			return nil
		},
		opts...)
}

// Time maps a time.Time property. The zero time is written as NULL.
func Time[T any](name string, ptr func(*T) *time.Time, opts ...FieldOption) Field[T] {
	return NewField(name,
		func(m *T) (query.Value, error) {
			t := *ptr(m)
			if t.IsZero() {
				return query.Null(), nil
			}
			return query.Time(t), nil
		},
		func(m *T, v query.Value) error {
			t, err := v.Timestamp()
			if err != nil {
				return err
			}
			*ptr(m) = t
			return nil
		},
		opts...)
}
