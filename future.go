package sculptor

import "context"

// Future is the pending result of an ...Async call.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// goAsync runs fn on its own goroutine. ctx is passed through to fn, so
// cancelling it aborts the underlying driver call.
func goAsync[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Await blocks until the result is ready or ctx is done. Giving up on ctx
// does not stop the operation; cancel the context passed to the ...Async
// call for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is ready.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
