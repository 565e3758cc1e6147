package otel

import (
	"net/http"
	"time"
)

func isSuccess(r *http.Response, err error) bool {
	return err == nil && r != nil && r.StatusCode < http.StatusBadRequest
}

// durationMs converts the time elapsed since the start to milliseconds, for histograms.
func durationMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
