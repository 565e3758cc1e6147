package request

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// RunGroupConcurrencyLimit is the default limit of concurrently sent requests in a RunGroup.
const RunGroupConcurrencyLimit = 32

// RunGroup collects requests by the Add method and sends them after the RunAndWait call.
// The first error cancels the group context and it is returned from RunAndWait.
// Requests can be added from callbacks, until the RunAndWait is finished.
//
// Use the WaitGroup to send immediately and to collect all errors.
type RunGroup struct {
	ctx     context.Context
	started chan struct{}
	group   *errgroup.Group
	sem     *semaphore.Weighted
}

func NewRunGroup(ctx context.Context) *RunGroup {
	return NewRunGroupWithLimit(ctx, RunGroupConcurrencyLimit)
}

func NewRunGroupWithLimit(ctx context.Context, limit int64) *RunGroup {
	group, groupCtx := errgroup.WithContext(ctx)
	return &RunGroup{ctx: groupCtx, started: make(chan struct{}), group: group, sem: semaphore.NewWeighted(limit)}
}

func (g *RunGroup) Add(request Sendable) {
	g.group.Go(func() error {
		<-g.started
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			return err
		}
		defer g.sem.Release(1)
		return request.SendOrErr(g.ctx)
	})
}

func (g *RunGroup) RunAndWait() error {
	close(g.started)
	return g.group.Wait()
}
