package database

import (
	"fmt"

	"github.com/samuelmaurice/sculptor/schema"
)

// ResultRow hydrates one raw row into a *T. Hydration runs once; later calls
// return the same instance and error.
type ResultRow[T any] struct {
	entity *schema.Entity[T]
	raw    Row

	hydrated bool
	model    *T
	err      error
}

// NewResultRow wraps a raw row for entity.
func NewResultRow[T any](entity *schema.Entity[T], raw Row) *ResultRow[T] {
	return &ResultRow[T]{entity: entity, raw: raw}
}

// Raw returns the underlying row.
func (r *ResultRow[T]) Raw() Row {
	return r.raw
}

// Hydrate builds the model: every entity field whose column is present in
// the row is set through its coercing setter. Columns without a field are
// ignored.
func (r *ResultRow[T]) Hydrate() (*T, error) {
	if r.hydrated {
		return r.model, r.err
	}
	r.hydrated = true

	m := new(T)
	for _, f := range r.entity.Fields() {
		v, ok := r.raw[f.Column]
		if !ok {
			continue
		}
		if err := f.Set(m, v); err != nil {
			r.err = fmt.Errorf("hydrate %s.%s from column %q: %w", r.entity.Name(), f.Name, f.Column, err)
			return nil, r.err
		}
	}

	r.model = m
	return m, nil
}

// ResultSet is the ordered result of a SELECT.
type ResultSet[T any] struct {
	rows []*ResultRow[T]
}

// NewResultSet wraps raw rows for entity, preserving order.
func NewResultSet[T any](entity *schema.Entity[T], raw []Row) *ResultSet[T] {
	rows := make([]*ResultRow[T], len(raw))
	for i, r := range raw {
		rows[i] = NewResultRow(entity, r)
	}
	return &ResultSet[T]{rows: rows}
}

// Len returns the number of rows.
func (s *ResultSet[T]) Len() int {
	return len(s.rows)
}

// Rows returns the unhydrated rows.
func (s *ResultSet[T]) Rows() []*ResultRow[T] {
	return s.rows
}

// First hydrates the first row. It fails with ErrModelNotFound when the set
// is empty.
func (s *ResultSet[T]) First() (*T, error) {
	if len(s.rows) == 0 {
		return nil, ErrModelNotFound
	}
	return s.rows[0].Hydrate()
}

// All hydrates every row in order, stopping at the first failure.
func (s *ResultSet[T]) All() ([]*T, error) {
	models := make([]*T, 0, len(s.rows))
	for _, r := range s.rows {
		m, err := r.Hydrate()
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}
