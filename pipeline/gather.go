package pipeline

import "context"

// gather runs fn for every index on its own goroutine and collects the
// results by position. Workers write into a buffered channel, so when ctx
// is done gather returns at once without waiting for them; done reports
// which positions completed.
func gather[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) T) (results []T, done []bool) {
	type item struct {
		i int
		v T
	}
	results = make([]T, n)
	done = make([]bool, n)
	if n == 0 {
		return results, done
	}

	ch := make(chan item, n)
	for i := range n {
		go func() {
			ch <- item{i: i, v: fn(ctx, i)}
		}()
	}

	for range n {
		select {
		case it := <-ch:
			results[it.i] = it.v
			done[it.i] = true
		case <-ctx.Done():
			return results, done
		}
	}
	return results, done
}
