package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	RetriesCount       = 5
	RequestTimeout     = 30 * time.Second
	RetryWaitTimeStart = 100 * time.Millisecond
	RetryWaitTimeMax   = 3 * time.Second
)

// RetryConfig of the Client.
// Count is the maximum number of retries, so a request is sent at most Count+1 times.
// TotalRequestTimeout limits all attempts together, including the delays.
type RetryConfig struct {
	Condition           RetryCondition
	Count               int
	TotalRequestTimeout time.Duration
	WaitTimeStart       time.Duration
	WaitTimeMax         time.Duration
}

// RetryCondition returns true if the attempt should be repeated.
// The response is nil on a transport error.
type RetryCondition func(response *http.Response, err error) bool

// retryableStatusCodes are temporary server side failures.
var retryableStatusCodes = map[int]bool{ //nolint:gochecknoglobals
	http.StatusRequestTimeout:      true,
	http.StatusConflict:            true,
	http.StatusLocked:              true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

func DefaultRetry() RetryConfig {
	return RetryConfig{
		Condition:           DefaultRetryCondition(),
		Count:               RetriesCount,
		TotalRequestTimeout: RequestTimeout,
		WaitTimeStart:       RetryWaitTimeStart,
		WaitTimeMax:         RetryWaitTimeMax,
	}
}

// TestingRetry is the DefaultRetry with short delays.
func TestingRetry() RetryConfig {
	cfg := DefaultRetry()
	cfg.WaitTimeStart = time.Millisecond
	cfg.WaitTimeMax = time.Millisecond
	return cfg
}

// NoRetry sends each request exactly once, the request timeout is kept.
func NoRetry() RetryConfig {
	cfg := DefaultRetry()
	cfg.Condition = nil
	cfg.Count = 0
	return cfg
}

// DefaultRetryCondition retries network errors and temporary HTTP errors.
// Canceled requests and unknown hosts are not retried.
func DefaultRetryCondition() RetryCondition {
	return func(response *http.Response, err error) bool {
		if response != nil && response.StatusCode != 0 {
			return retryableStatusCodes[response.StatusCode]
		}
		return err != nil && !errors.Is(err, context.Canceled) && !isUnknownHost(err)
	}
}

func isUnknownHost(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such host") || strings.Contains(msg, "No address associated with hostname")
}

// NewBackoff returns an exponential backoff without randomization.
func (c RetryConfig) NewBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.WaitTimeStart
	b.MaxInterval = c.WaitTimeMax
	b.MaxElapsedTime = c.TotalRequestTimeout
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}
