// Package parallel provides parallel execution helpers.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NumWorkers returns the default number of workers for parallel operations.
func NumWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Range is a contiguous half-open index range.
type Range struct {
	Lo, Hi int
}

// EvenRanges partitions [0, n) into at most workers contiguous ranges of
// near-equal size, ascending, with no gaps or overlap.
func EvenRanges(n, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	var out []Range
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, Range{Lo: lo, Hi: hi})
	}
	return out
}

// ForEachRange runs fn once per range of [0, n) across the given number of
// workers and waits at the barrier for all of them. Each invocation writes
// only to its own range, so no locking is needed and output order equals
// index order. The first error is returned after the barrier.
func ForEachRange(n, workers int, fn func(r Range) error) error {
	ranges := EvenRanges(n, workers)
	if len(ranges) <= 1 || workers <= 1 {
		for _, r := range ranges {
			if err := fn(r); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for _, r := range ranges {
		r := r
		g.Go(func() error { return fn(r) })
	}
	return g.Wait()
}
