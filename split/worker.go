// Package split offloads content splitting and hashing to a bounded pool
// of goroutines.
package split

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/chatvault"
	"golang.org/x/sync/semaphore"
)

var _ chatvault.Splitter = (*Worker)(nil)

// Worker implements chatvault.Splitter. Work runs on a pool goroutine when
// a slot is free and on the caller's goroutine when the pool is saturated,
// so callers never queue behind other requests.
type Worker struct {
	sem *semaphore.Weighted
}

// NewWorker creates a Worker with size pool slots. A non-positive size
// uses GOMAXPROCS.
func NewWorker(size int) *Worker {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Worker{sem: semaphore.NewWeighted(int64(size))}
}

// Split splits text along line boundaries. It returns nil if ctx is done
// before the result is ready.
func (w *Worker) Split(ctx context.Context, text string, maxSize, overlapHint int) []chatvault.ContentPart {
	return offload(ctx, w.sem, func() []chatvault.ContentPart {
		return chatvault.SplitText(text, maxSize, overlapHint)
	})
}

// Hash returns the xxhash of text as 16 hex digits. It returns "" if ctx is
// done before the result is ready.
func (w *Worker) Hash(ctx context.Context, text string) string {
	return offload(ctx, w.sem, func() string {
		return Hash(text)
	})
}

// Hash returns the xxhash of text as 16 hex digits.
func Hash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

func offload[T any](ctx context.Context, sem *semaphore.Weighted, fn func() T) T {
	if !sem.TryAcquire(1) {
		return fn()
	}

	ch := make(chan T, 1)
	go func() {
		defer sem.Release(1)
		ch <- fn()
	}()

	select {
	case v := <-ch:
		return v
	case <-ctx.Done():
		var zero T
		return zero
	}
}
