package request

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

// WaitGroupConcurrencyLimit is the default limit of concurrently sent requests in a WaitGroup.
const WaitGroupConcurrencyLimit = 8

// WaitGroup sends each request as soon as it is passed to the Send method.
// An error does not stop the other requests, the Wait method returns all errors.
// Requests can be added from callbacks of other requests in the group.
//
// Use the RunGroup to postpone sending or to stop at the first error.
type WaitGroup struct {
	ctx  context.Context
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
	lock sync.Mutex
	errs *multierror.Error
}

func NewWaitGroup(ctx context.Context) *WaitGroup {
	return NewWaitGroupWithLimit(ctx, WaitGroupConcurrencyLimit)
}

func NewWaitGroupWithLimit(ctx context.Context, limit int64) *WaitGroup {
	return &WaitGroup{ctx: ctx, sem: semaphore.NewWeighted(limit)}
}

func (g *WaitGroup) Send(request Sendable) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			g.addError(err)
			return
		}
		defer g.sem.Release(1)
		if err := request.SendOrErr(g.ctx); err != nil {
			g.addError(err)
		}
	}()
}

// Wait blocks until all requests are completed.
// A single error is returned as it is, multiple errors are wrapped by the multierror package.
func (g *WaitGroup) Wait() error {
	g.wg.Wait()
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.errs != nil && len(g.errs.Errors) == 1 {
		return g.errs.Errors[0]
	}
	return g.errs.ErrorOrNil()
}

func (g *WaitGroup) addError(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.errs = multierror.Append(g.errs, err)
}
