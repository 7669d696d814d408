// Package worker runs independent jobs over a bounded set of goroutines
// while keeping results in submission order. The exporter must index
// resources in load order, so parallel file reads still hand their results
// back ordered.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Result holds one job outcome.
type Result[T any] struct {
	Value T
	Err   error
}

// BatchFunc processes one input.
type BatchFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Batch runs fn over every input with at most workers goroutines and returns
// one result per input, in input order. workers <= 0 uses NumCPU. A
// cancelled context stops dispatching new jobs; inputs never dispatched
// report the context error.
func Batch[In, Out any](ctx context.Context, workers int, inputs []In, fn BatchFunc[In, Out]) []Result[Out] {
	results := make([]Result[Out], len(inputs))
	if len(inputs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	// Small batches skip the goroutine machinery.
	if workers == 1 || len(inputs) <= 2 {
		for i, input := range inputs {
			if err := ctx.Err(); err != nil {
				results[i] = Result[Out]{Err: err}
				continue
			}
			out, err := fn(ctx, input)
			results[i] = Result[Out]{Value: out, Err: err}
		}
		return results
	}

	jobs := make(chan int, len(inputs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = Result[Out]{Err: err}
					continue
				}
				out, err := fn(ctx, inputs[i])
				results[i] = Result[Out]{Value: out, Err: err}
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
