package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// errorWithRequest is implemented by an error definition which needs the HTTP request, for example to format a message.
type errorWithRequest interface {
	error
	SetRequest(request *http.Request)
}

type errorWithResponse interface {
	error
	SetResponse(response *http.Response)
}

// mapErrorBody decodes the JSON body to the error definition and injects the request and the response.
func mapErrorBody(res *http.Response, body io.Reader, errDef error) error {
	if err := json.NewDecoder(body).Decode(errDef); err != nil {
		return fmt.Errorf(`cannot decode JSON error: %w`, err)
	}
	if v, ok := errDef.(errorWithRequest); ok {
		v.SetRequest(res.Request)
	}
	if v, ok := errDef.(errorWithResponse); ok {
		v.SetResponse(res)
	}
	return nil
}

// sendError converts a transport error to the `request METHOD "url" failed: reason` form.
// Timeouts and cancellations are reported with the elapsed time.
func sendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	if reason := timeoutReason(startedAt, clientTimeout, req, err); reason != nil {
		err = &url.Error{Op: req.Method, URL: req.URL.String(), Err: reason}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}
	return err
}

func timeoutReason(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	var netErr net.Error
	deadline, hasDeadline := req.Context().Deadline()
	switch {
	case hasDeadline && errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("timeout after %s", deadline.Sub(startedAt))
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("canceled after %s", time.Since(startedAt))
	case errors.As(err, &netErr) && netErr.Timeout() && strings.Contains(err.Error(), "Client.Timeout exceeded"):
		return fmt.Errorf("timeout after %s", clientTimeout)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("timeout after %s", time.Since(startedAt))
	default:
		return nil
	}
}
