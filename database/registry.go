package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/samuelmaurice/sculptor/query"
)

// QueryLogFunc receives every compiled statement while debug mode is on.
type QueryLogFunc func(ctx context.Context, connection, sql string, bindings query.Bindings)

// Registry holds named connections, the default connection name, and the
// debug settings.
//
// A Registry is configured during startup and only read afterwards. It has no
// lock: every Register/Set call must happen before the first query.
type Registry struct {
	conns  map[string]Connection
	order  []string
	def    string
	debug  bool
	logger QueryLogFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Connection)}
}

// Register adds or replaces a named connection. The first connection
// registered becomes the default until SetDefault is called.
func (r *Registry) Register(name string, conn Connection) {
	if _, exists := r.conns[name]; !exists {
		r.order = append(r.order, name)
	}
	r.conns[name] = conn
	if r.def == "" {
		r.def = name
	}
}

// SetDefault selects the connection used by entities that name none.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.conns[name]; !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, name)
	}
	r.def = name
	return nil
}

// Default returns the default connection name.
func (r *Registry) Default() string {
	return r.def
}

// Names returns the registered connection names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Connection returns the named connection, or the default one when name is
// empty.
func (r *Registry) Connection(name string) (Connection, error) {
	if name == "" {
		name = r.def
	}
	conn, ok := r.conns[name]
	if !ok {
		if name == "" {
			return nil, fmt.Errorf("%w: no default connection registered", ErrConnectionNotFound)
		}
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, name)
	}
	return conn, nil
}

// Resolve returns the connection for name along with its effective name.
func (r *Registry) Resolve(name string) (string, Connection, error) {
	if name == "" {
		name = r.def
	}
	conn, err := r.Connection(name)
	return name, conn, err
}

// SetDebug turns query logging on or off.
func (r *Registry) SetDebug(debug bool) {
	r.debug = debug
}

// Debug reports whether query logging is on.
func (r *Registry) Debug() bool {
	return r.debug
}

// SetQueryLogger installs the function that receives compiled statements in
// debug mode. A nil logger falls back to slog.Default.
func (r *Registry) SetQueryLogger(fn QueryLogFunc) {
	r.logger = fn
}

// LogQuery reports a compiled statement when debug mode is on.
func (r *Registry) LogQuery(ctx context.Context, connection, sql string, bindings query.Bindings) {
	if !r.debug {
		return
	}
	if r.logger != nil {
		r.logger(ctx, connection, sql, bindings)
		return
	}
	slog.Default().InfoContext(ctx, "query", "connection", connection, "sql", sql)
}

// Close closes every registered connection that holds resources.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.order {
		if c, ok := r.conns[name].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
