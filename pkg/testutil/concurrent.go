package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	dErrors "bridgeid/pkg/domain-errors"
)

// ConcurrentResult tallies outcomes of operations raced against each other.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// RunConcurrent runs fn on n goroutines and buckets each result by domain error code.
// AlreadyFulfilled and Conflict count as conflicts; NotFound and UnknownRequest as not-founds.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAlreadyFulfilled), dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			case dErrors.HasCode(err, dErrors.CodeUnknownRequest), dErrors.HasCode(err, dErrors.CodeNotFound):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
	}
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
