// Package sculptor is an active-record mapper: entities declared with
// package schema are queried through a fluent Builder, hydrated from raw
// rows, saved back, and linked through has-one, has-many and belongs-to
// relations.
//
//	type User struct {
//	    sculptor.Base
//	    Id   int64
//	    Name string
//	}
//
//	var Users = sculptor.MustNewModel(registry, schema.MustNew([]schema.Field[User]{
//	    schema.Integer("Id", func(u *User) *int64 { return &u.Id }),
//	    schema.String("Name", func(u *User) *string { return &u.Name }),
//	}))
//
//	u, err := Users.Find(ctx, 1)
//	adults, err := Users.Query().WhereOp("age", ">=", 18).Take(10).Get(ctx)
package sculptor

import (
	"context"
	"errors"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/schema"
)

// Model is the class-level handle of an entity: it starts queries and
// persists instances.
type Model[T any] struct {
	registry *database.Registry
	entity   *schema.Entity[T]
}

// NewModel binds entity to the connections of registry.
func NewModel[T any](registry *database.Registry, entity *schema.Entity[T]) (*Model[T], error) {
	if registry == nil {
		return nil, errors.New("sculptor: nil registry")
	}
	if entity == nil {
		return nil, errors.New("sculptor: nil entity")
	}
	return &Model[T]{registry: registry, entity: entity}, nil
}

// MustNewModel is like NewModel but panics on error.
func MustNewModel[T any](registry *database.Registry, entity *schema.Entity[T]) *Model[T] {
	m, err := NewModel(registry, entity)
	if err != nil {
		panic(err)
	}
	return m
}

// Entity returns the mapping metadata.
func (m *Model[T]) Entity() *schema.Entity[T] {
	return m.entity
}

// Query starts a builder on the entity's table.
func (m *Model[T]) Query() *Builder[T] {
	return newBuilder(m)
}

// Find returns the instance whose primary key equals key, or
// ErrModelNotFound.
func (m *Model[T]) Find(ctx context.Context, key any) (*T, error) {
	return m.Query().Where(m.entity.PrimaryKey().Column, key).First(ctx)
}

// All returns every row of the table.
func (m *Model[T]) All(ctx context.Context) ([]*T, error) {
	return m.Query().Get(ctx)
}

// Exists reports whether inst has been persisted, that is whether its
// primary key is non-zero.
func (m *Model[T]) Exists(inst *T) bool {
	return m.entity.Persisted(inst)
}

// Save inserts a new instance and writes the generated key back to it, or
// updates a persisted one by primary key. Every mapped field except the
// primary key is written.
func (m *Model[T]) Save(ctx context.Context, inst *T) error {
	values, err := m.entity.Values(inst)
	if err != nil {
		return err
	}
	pk := m.entity.PrimaryKey()

	if !m.Exists(inst) {
		id, err := m.Query().Insert(ctx, values)
		if err != nil {
			return err
		}
		return pk.Set(inst, query.Int(id))
	}

	key, err := m.entity.Key(inst)
	if err != nil {
		return err
	}
	_, err = m.Query().Where(pk.Column, key).Update(ctx, values)
	return err
}

// FindAsync runs Find on its own goroutine.
func (m *Model[T]) FindAsync(ctx context.Context, key any) *Future[*T] {
	return m.Query().Where(m.entity.PrimaryKey().Column, key).FirstAsync(ctx)
}

// AllAsync runs All on its own goroutine.
func (m *Model[T]) AllAsync(ctx context.Context) *Future[[]*T] {
	return m.Query().GetAsync(ctx)
}

// SaveAsync runs Save on its own goroutine. inst must not be touched until
// the future completes.
func (m *Model[T]) SaveAsync(ctx context.Context, inst *T) *Future[*T] {
	return goAsync(ctx, func(ctx context.Context) (*T, error) {
		if err := m.Save(ctx, inst); err != nil {
			return nil, err
		}
		return inst, nil
	})
}
