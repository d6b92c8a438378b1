package worker

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Pool bounds the number of goroutines used for one fan-out/join phase.
// A nil *Pool runs everything on the calling goroutine.
type Pool struct {
	size int
}

// NewPool creates a pool. size <= 0 uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{size: size}
}

// Size returns the maximum number of concurrent goroutines.
func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.size
}

// ForEach runs fn for every item and returns once all calls finished.
// A panic in fn is re-raised on the caller after the join.
func ForEach[T any](p *Pool, items []T, fn func(T)) {
	if p == nil || p.size == 1 || len(items) < 2 {
		for _, item := range items {
			fn(item)
		}
		return
	}

	cp := pool.New().WithMaxGoroutines(min(p.size, len(items)))
	for _, item := range items {
		cp.Go(func() {
			fn(item)
		})
	}
	cp.Wait()
}

// ForEachErr is ForEach for fallible work. Every item runs; the errors are joined.
// The context passed to fn is cancelled after the first failure.
func ForEachErr[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) error) error {
	cp := pool.New().
		WithMaxGoroutines(max(1, min(p.Size(), len(items)))).
		WithContext(ctx).
		WithCancelOnError()
	for _, item := range items {
		cp.Go(func(ctx context.Context) error {
			return fn(ctx, item)
		})
	}
	return cp.Wait()
}
