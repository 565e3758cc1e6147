package request

import "net/http"

// HTTPResponse is passed to the HTTPRequest callbacks.
// It contains the request definition, the raw response and the mapped result or error.
type HTTPResponse interface {
	Definition
	// ResponseHeader returns the response headers, or nil if no response has been received.
	ResponseHeader() http.Header
	// StatusCode returns the response status code, or 0 if no response has been received.
	StatusCode() int
	// RawRequest returns the request of the last attempt, if any.
	RawRequest() *http.Request
	RawResponse() *http.Response
	// IsSuccess is true for status codes 2xx.
	IsSuccess() bool
	// IsError is true for status codes >= 400.
	IsError() bool
	// Result returns the value the response body has been mapped to.
	Result() any
	// Error returns the mapped error response, or a transport error.
	Error() error
}

type httpResponse struct {
	Definition
	raw    *http.Response
	result any
	err    error
}

func (r *httpResponse) ResponseHeader() http.Header {
	if r.raw == nil {
		return nil
	}
	return r.raw.Header
}

func (r *httpResponse) StatusCode() int {
	if r.raw == nil {
		return 0
	}
	return r.raw.StatusCode
}

func (r *httpResponse) RawRequest() *http.Request {
	if r.raw == nil {
		return nil
	}
	return r.raw.Request
}

func (r *httpResponse) RawResponse() *http.Response {
	return r.raw
}

func (r *httpResponse) IsSuccess() bool {
	code := r.StatusCode()
	return code >= 200 && code < 300
}

func (r *httpResponse) IsError() bool {
	return r.StatusCode() >= 400
}

func (r *httpResponse) Result() any {
	return r.result
}

func (r *httpResponse) Error() error {
	return r.err
}
