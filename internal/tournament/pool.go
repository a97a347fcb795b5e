package tournament

import (
	"context"
	"sync"
	"sync/atomic"
)

// runPool calls fn for every index in [0, n). One worker runs the indices
// in order on the calling goroutine; more workers pull the next index from
// a shared counter. Once ctx is done no new index starts, but running
// calls finish.
func runPool(ctx context.Context, workers, n int, fn func(i int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return
			}
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}
