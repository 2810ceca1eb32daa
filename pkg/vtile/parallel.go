package vtile

import (
	"golang.org/x/sync/errgroup"
)

// evaluate calls fn for every index in [0, n).
//
// With workers > 1 the calls run on up to that many goroutines. fn must
// only write to state owned by its index; callers reassemble results by
// index, so ordering is the same as the sequential path.
func evaluate(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	// Don't create more workers than features
	if workers > n {
		workers = n
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
