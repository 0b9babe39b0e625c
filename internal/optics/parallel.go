package optics

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// minChunk is the smallest number of cells handed to one worker.
const minChunk = 8

// AnalyzeAll analyzes independent cells concurrently. Reports keep the
// order of cells. Cancelling ctx stops remaining work and returns ctx.Err().
func (e *Engine) AnalyzeAll(ctx context.Context, cells []Cell) ([]Report, error) {
	reports := make([]Report, len(cells))
	errs := make([]error, len(cells))

	workers := e.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ParallelFor(len(cells), minChunk, workers, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			reports[i], errs[i] = e.Analyze(cells[i])
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("cell %d (%s): %w", i, cells[i].Name, err)
		}
	}
	return reports, nil
}

// ParallelFor executes fn over [0, n) split into contiguous chunks of at
// least minChunk elements, one goroutine per chunk.
func ParallelFor(n, minChunk, numWorkers int, fn func(start, end int)) {
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
