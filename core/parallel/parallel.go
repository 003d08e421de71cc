// Package parallel splits index ranges across CPU cores. Estimators use
// it for row-wise work such as building design matrices and assigning
// cluster labels, where every index writes to its own slot.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize runs fn over [0, items) split into per-worker ranges, one
// worker per CPU core at most. fn must be safe to run concurrently for
// disjoint ranges. Blocks until all workers finish.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// 端数は切り上げで各ワーカーに割り当てる
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially below threshold items,
// in parallel above it. Goroutine startup costs more than small loops.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
