// Package workerpool bounds the number of goroutines decoding frames in
// parallel and gives the caller a single cancellation token that tears
// the whole group down the moment any one decode fails.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs bounded concurrent work under one context.Context: cancelling
// ctx (the abort() path), or any task returning an error, cancels the
// context every task receives. Go still runs tasks scheduled after
// cancellation; they receive the cancelled context.
type Pool struct {
	group *errgroup.Group
	ctx   context.Context
}

// New creates a Pool that runs at most limit tasks concurrently. limit <= 0
// means unbounded (errgroup's default).
func New(ctx context.Context, limit int) *Pool {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &Pool{group: g, ctx: gctx}
}

// Go schedules fn to run, respecting the pool's concurrency limit. fn should
// check p.Context().Err() for early-exit on cancellation; it is not forcibly
// preempted mid-flight (Go has no task-kill primitive), matching the
// "outstanding tasks drop silently" semantics from the caller's point of
// view once Wait returns.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.group.Go(func() error {
		return fn(p.ctx)
	})
}

// Context returns the pool's (possibly already-cancelled) context.
func (p *Pool) Context() context.Context { return p.ctx }

// Wait blocks until every scheduled task has returned, then returns the
// first non-nil error any of them produced (if any).
func (p *Pool) Wait() error {
	return p.group.Wait()
}
