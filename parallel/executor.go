// Package parallel implements the binary-splitting driver of spec.md
// §4.7: recursive splitting of a linear rational series Σ aₙ/bₙ into
// (T,Q,P) triples, combined across a node set sized by
// numberOfProcessors. The concrete Executor is a fixed-size worker pool
// built on golang.org/x/sync/errgroup and golang.org/x/sync/semaphore,
// grounded on api/broadcaster.go's fan-out-to-goroutines shape.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// PoolExecutor caps the number of concurrently in-flight
// binary-splitting nodes at its weight (spec.md §4.7 "apportion ...
// thread budget"). It implements apcontext.Executor.
type PoolExecutor struct {
	sem *semaphore.Weighted
	grp *errgroup.Group
	ctx context.Context
}

// NewPoolExecutor builds an executor that admits up to weight
// concurrent tasks, bound to the given errgroup.Group (its Wait joins
// every scheduled task and surfaces the first error, per
// api.Broadcaster's fan-out/join pattern).
func NewPoolExecutor(ctx context.Context, grp *errgroup.Group, weight int64) *PoolExecutor {
	return &PoolExecutor{sem: semaphore.NewWeighted(weight), grp: grp, ctx: ctx}
}

// Go schedules fn on the pool, blocking the caller until a semaphore
// slot is free, so at most weight scheduled tasks run at once; if the
// pool's context is already cancelled, fn runs inline. fn is expected to report errors and
// cancellation through the surrounding errgroup context, not a return
// value, matching apcontext.Executor's signature.
func (p *PoolExecutor) Go(fn func()) {
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		// Context already cancelled; run fn inline so it observes
		// cancellation itself at its own recursion-entry check rather
		// than silently dropping the work.
		fn()
		return
	}
	p.grp.Go(func() error {
		defer p.sem.Release(1)
		fn()
		return nil
	})
}

// NewContext builds a context.Context, *errgroup.Group, and Executor
// sized to numberOfProcessors, for a single top-level driver
// invocation (e.g. one cmd/apfloatpi run).
func NewContext(parent context.Context, numberOfProcessors int) (context.Context, *errgroup.Group, apcontext.Executor) {
	grp, ctx := errgroup.WithContext(parent)
	exec := NewPoolExecutor(ctx, grp, int64(numberOfProcessors))
	return ctx, grp, exec
}
