package async

import (
	"context"
	"sync"
)

// Ordered calls fn for every index in [0, n) with at most limit calls in
// flight and returns the results indexed like the inputs.
//
// A limit below 2 runs the calls sequentially on the calling goroutine.
// Calls that have not started when ctx is cancelled still run, so every slot
// is filled; fn is expected to observe ctx itself.
//
// Example:
//
//	results := Ordered(ctx, 4, len(docs), func(ctx context.Context, i int) Result {
//	    return seed(ctx, docs[i])
//	})
func Ordered[T any](ctx context.Context, limit, n int, fn func(ctx context.Context, i int) T) []T {
	results := make([]T, n)
	if n == 0 {
		return results
	}

	if limit < 2 {
		for i := range n {
			results[i] = fn(ctx, i)
		}
		return results
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := range n {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = fn(ctx, i)
		}()
	}

	wg.Wait()
	return results
}
