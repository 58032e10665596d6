// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	dErrors "taxcalc/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes   int32
	Validations int32
	NotFounds   int32
	Errors      int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Validations + r.NotFounds + r.Errors
}

// RunConcurrent executes fn on goroutines goroutines and counts the outcomes.
// Domain errors are split into validation and not-found; anything else is
// counted under Errors.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, validations, notFounds, errs atomic.Int32

	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.IsValidation(err):
				validations.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes:   successes.Load(),
		Validations: validations.Load(),
		NotFounds:   notFounds.Load(),
		Errors:      errs.Load(),
	}
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
