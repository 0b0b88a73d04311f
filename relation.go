package sculptor

import (
	"context"
	"fmt"
	"sync"

	"github.com/samuelmaurice/sculptor/dbstrings"
	"github.com/samuelmaurice/sculptor/schema"
)

// Base is embedded in entity structs to hold per-instance state: the
// resolved relations, keyed by relation name. Each relation is loaded at
// most once per instance and never refreshed.
//
// Resolving the same relation concurrently on one instance may query more
// than once; the last result stored wins. A Base must not be copied after
// first use.
type Base struct {
	mu        sync.Mutex
	relations map[string]any
}

func (b *Base) cachedRelation(name string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.relations[name]
	return v, ok
}

func (b *Base) storeRelation(name string, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.relations == nil {
		b.relations = make(map[string]any)
	}
	b.relations[name] = v
}

type cacheHolder interface {
	cachedRelation(name string) (any, bool)
	storeRelation(name string, v any)
}

// cached returns the memoized result of relation name on owner, or loads
// and stores it. The lock is not held during load. Owners that do not embed
// Base are never memoized. Failed loads are not stored.
func cached[R any](owner any, name string, load func() (R, error)) (R, error) {
	holder, ok := owner.(cacheHolder)
	if !ok {
		return load()
	}
	if v, ok := holder.cachedRelation(name); ok {
		if r, ok := v.(R); ok {
			return r, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	holder.storeRelation(name, v)
	return v, nil
}

// RelationOption customizes a relation.
type RelationOption func(*relationOptions)

type relationOptions struct {
	foreignKey string
}

// WithForeignKey overrides the foreign key. It is matched against property
// names first, then columns.
func WithForeignKey(key string) RelationOption {
	return func(o *relationOptions) { o.foreignKey = key }
}

func applyRelationOptions(def string, opts []RelationOption) string {
	o := relationOptions{foreignKey: def}
	for _, opt := range opts {
		opt(&o)
	}
	return o.foreignKey
}

func resolveForeignKey[E any](entity *schema.Entity[E], key, relation string) (schema.Field[E], error) {
	f, ok := entity.Resolve(key)
	if !ok {
		return f, fmt.Errorf("%w: %s: %s has no foreign key %q", ErrRelation, relation, entity.Name(), key)
	}
	return f, nil
}

// =============================================================================
// Has one / has many
// =============================================================================

// HasOne links an owner P to the single C whose foreign key holds the
// owner's primary key. The foreign key defaults to snake_case(owner name)
// + "_id" on C.
type HasOne[P, C any] struct {
	name       string
	owner      *Model[P]
	target     *Model[C]
	foreignKey string
}

// NewHasOne declares a has-one relation.
func NewHasOne[P, C any](name string, owner *Model[P], target *Model[C], opts ...RelationOption) *HasOne[P, C] {
	return &HasOne[P, C]{
		name:       name,
		owner:      owner,
		target:     target,
		foreignKey: applyRelationOptions(dbstrings.ToForeignKey(owner.entity.Name()), opts),
	}
}

// Name returns the relation name, which is also its cache key.
func (r *HasOne[P, C]) Name() string { return r.name }

// Get returns the related instance, or ErrModelNotFound.
func (r *HasOne[P, C]) Get(ctx context.Context, owner *P) (*C, error) {
	fk, err := resolveForeignKey(r.target.entity, r.foreignKey, r.name)
	if err != nil {
		return nil, err
	}
	return cached(owner, r.name, func() (*C, error) {
		key, err := r.owner.entity.Key(owner)
		if err != nil {
			return nil, err
		}
		return r.target.Query().Where(fk.Column, key).First(ctx)
	})
}

// GetAsync runs Get on its own goroutine.
func (r *HasOne[P, C]) GetAsync(ctx context.Context, owner *P) *Future[*C] {
	return goAsync(ctx, func(ctx context.Context) (*C, error) {
		return r.Get(ctx, owner)
	})
}

// HasMany links an owner P to every C whose foreign key holds the owner's
// primary key. The foreign key defaults to snake_case(owner name) + "_id"
// on C.
type HasMany[P, C any] struct {
	name       string
	owner      *Model[P]
	target     *Model[C]
	foreignKey string
}

// NewHasMany declares a has-many relation.
func NewHasMany[P, C any](name string, owner *Model[P], target *Model[C], opts ...RelationOption) *HasMany[P, C] {
	return &HasMany[P, C]{
		name:       name,
		owner:      owner,
		target:     target,
		foreignKey: applyRelationOptions(dbstrings.ToForeignKey(owner.entity.Name()), opts),
	}
}

// Name returns the relation name, which is also its cache key.
func (r *HasMany[P, C]) Name() string { return r.name }

// Get returns the related instances in driver order.
func (r *HasMany[P, C]) Get(ctx context.Context, owner *P) ([]*C, error) {
	fk, err := resolveForeignKey(r.target.entity, r.foreignKey, r.name)
	if err != nil {
		return nil, err
	}
	return cached(owner, r.name, func() ([]*C, error) {
		key, err := r.owner.entity.Key(owner)
		if err != nil {
			return nil, err
		}
		return r.target.Query().Where(fk.Column, key).Get(ctx)
	})
}

// GetAsync runs Get on its own goroutine.
func (r *HasMany[P, C]) GetAsync(ctx context.Context, owner *P) *Future[[]*C] {
	return goAsync(ctx, func(ctx context.Context) ([]*C, error) {
		return r.Get(ctx, owner)
	})
}

// =============================================================================
// Belongs to
// =============================================================================

// BelongsTo links a child C to the parent P whose primary key the child's
// foreign key holds. The foreign key defaults to the property
// PascalCase(name) + "Id" on C.
type BelongsTo[C, P any] struct {
	name       string
	child      *Model[C]
	parent     *Model[P]
	foreignKey string
}

// NewBelongsTo declares a belongs-to relation.
func NewBelongsTo[C, P any](name string, child *Model[C], parent *Model[P], opts ...RelationOption) *BelongsTo[C, P] {
	return &BelongsTo[C, P]{
		name:       name,
		child:      child,
		parent:     parent,
		foreignKey: applyRelationOptions(dbstrings.ToForeignKeyField(name), opts),
	}
}

// Name returns the relation name, which is also its cache key.
func (r *BelongsTo[C, P]) Name() string { return r.name }

// Get returns the parent instance, or ErrModelNotFound.
func (r *BelongsTo[C, P]) Get(ctx context.Context, child *C) (*P, error) {
	fk, err := resolveForeignKey(r.child.entity, r.foreignKey, r.name)
	if err != nil {
		return nil, err
	}
	return cached(child, r.name, func() (*P, error) {
		key, err := fk.Get(child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.name, err)
		}
		return r.parent.Query().Where(r.parent.entity.PrimaryKey().Column, key).First(ctx)
	})
}

// GetAsync runs Get on its own goroutine.
func (r *BelongsTo[C, P]) GetAsync(ctx context.Context, child *C) *Future[*P] {
	return goAsync(ctx, func(ctx context.Context) (*P, error) {
		return r.Get(ctx, child)
	})
}
