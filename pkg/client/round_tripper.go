package client

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/keboola/go-jsonapi-client/pkg/client/trace"
)

// roundTripper wraps a http.RoundTripper and adds trace and retry functionality.
type roundTripper struct {
	trace   *trace.ClientTrace
	retry   RetryConfig
	wrapped http.RoundTripper
}

// ContextRetryAttempt returns the retry attempt number of the request, the first attempt is 0.
func ContextRetryAttempt(ctx context.Context) (int, bool) {
	return trace.RetryAttempt(ctx)
}

func (rt roundTripper) RoundTrip(req *http.Request) (res *http.Response, err error) {
	retry := rt.retry.NewBackoff()
	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		// Clone the request, each attempt needs a separate context and body
		attemptReq := req.Clone(trace.WithRetryAttempt(ctx, attempt))
		if attempt > 0 && req.GetBody != nil {
			if attemptReq.Body, err = req.GetBody(); err != nil {
				return nil, err
			}
		}

		// Trace request start
		if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
			rt.trace.HTTPRequestStart(attemptReq)
		}

		// Send
		res, err = rt.wrapped.RoundTrip(attemptReq)
		if res != nil && res.Request == nil {
			res.Request = attemptReq
		}

		// Trace request done
		if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
			rt.trace.HTTPRequestDone(res, err)
		}

		// Check if the request should be retried
		if attempt >= rt.retry.Count || rt.retry.Condition == nil || !rt.retry.Condition(res, err) {
			return res, err
		}
		delay := retry.NextBackOff()
		if delay == backoff.Stop {
			return res, err
		}

		// Discard the response body, the response will be replaced by the next attempt
		if res != nil && res.Body != nil {
			_ = res.Body.Close()
		}

		// Trace retry delay
		if rt.trace != nil && rt.trace.RetryDelay != nil {
			rt.trace.RetryDelay(attempt+1, delay)
		}

		// Wait
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
