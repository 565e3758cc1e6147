package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Result is a target value of the response mapping.
type Result = any

// NoResult is used if the response body is not needed.
type NoResult struct{}

// Callback is invoked when the request is completed, the returned error replaces the original one.
type Callback func(ctx context.Context, response HTTPResponse, err error) error

// HTTPRequest is an immutable definition of an HTTP request.
// Each With* / And* method returns a modified copy, the original value is never changed.
type HTTPRequest interface {
	Definition
	// WithMethod sets the HTTP method.
	WithMethod(method string) HTTPRequest
	// WithGet is a shortcut for WithMethod(http.MethodGet).WithURL(url).
	WithGet(url string) HTTPRequest
	// WithPost is a shortcut for WithMethod(http.MethodPost).WithURL(url).
	WithPost(url string) HTTPRequest
	// WithPut is a shortcut for WithMethod(http.MethodPut).WithURL(url).
	WithPut(url string) HTTPRequest
	// WithDelete is a shortcut for WithMethod(http.MethodDelete).WithURL(url).
	WithDelete(url string) HTTPRequest
	// WithBaseURL sets the base URL, a relative URL is resolved against it.
	WithBaseURL(baseURL string) HTTPRequest
	// WithURL sets an absolute URL, or a URL relative to the base URL.
	WithURL(url string) HTTPRequest
	// AndHeader sets one header, the previous values of the header are replaced.
	AndHeader(key, value string) HTTPRequest
	// WithHeaders sets multiple headers, the previous values of the same keys are replaced.
	WithHeaders(header http.Header) HTTPRequest
	// AndQueryParam sets one query parameter.
	AndQueryParam(key, value string) HTTPRequest
	// WithQueryParams replaces all query parameters.
	WithQueryParams(params map[string]string) HTTPRequest
	// AndPathParam sets one value of a {placeholder} in the URL.
	AndPathParam(key, value string) HTTPRequest
	// WithPathParams replaces all path parameters.
	WithPathParams(params map[string]string) HTTPRequest
	// WithBody sets the request body, see Definition.RequestBody for supported types.
	WithBody(body any) HTTPRequest
	// WithJSONBody sets the request body and the "Content-Type: application/json" header.
	WithJSONBody(body any) HTTPRequest
	// WithResult sets the target of a successful response mapping.
	WithResult(result any) HTTPRequest
	// WithError sets the target of an error response mapping.
	WithError(err error) HTTPRequest
	// WithOnComplete registers a callback invoked after each send.
	WithOnComplete(fn Callback) HTTPRequest
	// WithOnSuccess registers a callback invoked if there is no error.
	WithOnSuccess(fn func(ctx context.Context, response HTTPResponse) error) HTTPRequest
	// WithOnError registers a callback invoked if there is an error.
	WithOnError(fn Callback) HTTPRequest
	// Send sends the request by the Sender and invokes the callbacks.
	Send(ctx context.Context) (response HTTPResponse, result any, err error)
	SendOrErr(ctx context.Context) error
}

// Definition is the read-only view of the HTTPRequest, it is consumed by a Sender.
type Definition interface {
	// Method returns the HTTP method, it panics if the method is not set.
	Method() string
	// URL returns the URL resolved against the base URL, it panics if the URL is not set.
	URL() *url.URL
	RequestHeader() http.Header
	QueryParams() url.Values
	// PathParams returns values of the {placeholders} in the URL.
	PathParams() map[string]string
	// RequestBody returns the body definition.
	// Supported types are string, []byte, io.ReadSeeker, io.ReadSeekCloser
	// and any JSON serializable value if the Content-Type is "application/json".
	RequestBody() any
	ResultDef() any
	ErrorDef() error
}

type definition struct {
	method  string
	baseURL *url.URL
	url     *url.URL
	header  http.Header
	query   url.Values
	path    map[string]string
	body    any
	result  any
	errDef  error
}

type httpRequest struct {
	definition
	sender    Sender
	callbacks []Callback
}

// NewHTTPRequest creates an empty request definition bound to the sender.
func NewHTTPRequest(sender Sender) HTTPRequest {
	return httpRequest{sender: sender, definition: definition{header: make(http.Header)}}
}

// Tracer returns the sender tracer, if any, the APIRequest uses it to open a span.
func (r httpRequest) Tracer() trace.Tracer {
	if v, ok := r.sender.(withTracer); ok {
		return v.Tracer()
	}
	return nil
}

func (d definition) Method() string {
	if d.method == "" {
		panic(fmt.Errorf("request method is not set"))
	}
	return d.method
}

func (d definition) URL() *url.URL {
	if d.url == nil {
		panic(fmt.Errorf("request url is not set"))
	}
	out := *d.url
	if d.baseURL == nil || out.IsAbs() {
		return &out
	}
	out.Path = strings.TrimLeft(out.Path, "/")
	return d.baseURL.ResolveReference(&out)
}

func (d definition) RequestHeader() http.Header {
	return d.header
}

func (d definition) QueryParams() url.Values {
	return d.query
}

func (d definition) PathParams() map[string]string {
	return d.path
}

func (d definition) RequestBody() any {
	return d.body
}

func (d definition) ResultDef() any {
	return d.result
}

func (d definition) ErrorDef() error {
	return d.errDef
}

func (r httpRequest) WithMethod(method string) HTTPRequest {
	r.method = method
	return r
}

func (r httpRequest) WithGet(url string) HTTPRequest {
	return r.WithMethod(http.MethodGet).WithURL(url)
}

func (r httpRequest) WithPost(url string) HTTPRequest {
	return r.WithMethod(http.MethodPost).WithURL(url)
}

func (r httpRequest) WithPut(url string) HTTPRequest {
	return r.WithMethod(http.MethodPut).WithURL(url)
}

func (r httpRequest) WithDelete(url string) HTTPRequest {
	return r.WithMethod(http.MethodDelete).WithURL(url)
}

func (r httpRequest) WithBaseURL(baseURL string) HTTPRequest {
	v, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURL, err))
	}
	// The trailing slash is required by the ResolveReference method
	v.Path += "/"
	r.baseURL = v
	return r
}

func (r httpRequest) WithURL(str string) HTTPRequest {
	v, err := url.Parse(str)
	if err != nil {
		panic(fmt.Errorf(`url "%s" is not valid: %w`, str, err))
	}
	r.url = v
	return r
}

func (r httpRequest) AndHeader(key, value string) HTTPRequest {
	r.header = r.header.Clone()
	r.header.Set(key, value)
	return r
}

func (r httpRequest) WithHeaders(header http.Header) HTTPRequest {
	r.header = r.header.Clone()
	for key, values := range header {
		r.header.Del(key)
		for _, v := range values {
			r.header.Add(key, v)
		}
	}
	return r
}

func (r httpRequest) AndQueryParam(key, value string) HTTPRequest {
	r.query = cloneURLValues(r.query)
	r.query.Set(key, value)
	return r
}

func (r httpRequest) WithQueryParams(params map[string]string) HTTPRequest {
	r.query = make(url.Values, len(params))
	for k, v := range params {
		r.query.Set(k, v)
	}
	return r
}

func (r httpRequest) AndPathParam(key, value string) HTTPRequest {
	r.path = cloneParams(r.path)
	r.path[key] = value
	return r
}

func (r httpRequest) WithPathParams(params map[string]string) HTTPRequest {
	r.path = cloneParams(params)
	return r
}

func (r httpRequest) WithBody(body any) HTTPRequest {
	r.body = body
	return r
}

func (r httpRequest) WithJSONBody(body any) HTTPRequest {
	return r.WithBody(body).AndHeader("Content-Type", "application/json")
}

func (r httpRequest) WithResult(result any) HTTPRequest {
	if _, ok := result.(io.Writer); !ok && reflect.ValueOf(result).Kind() != reflect.Ptr {
		panic(fmt.Errorf(`result must be defined by a pointer`))
	}
	r.result = result
	return r
}

func (r httpRequest) WithError(err error) HTTPRequest {
	if reflect.ValueOf(err).Kind() != reflect.Ptr {
		panic(fmt.Errorf(`error must be defined by a pointer`))
	}
	r.errDef = err
	return r
}

func (r httpRequest) WithOnComplete(fn Callback) HTTPRequest {
	r.callbacks = append(r.callbacks[:len(r.callbacks):len(r.callbacks)], fn)
	return r
}

func (r httpRequest) WithOnSuccess(fn func(ctx context.Context, response HTTPResponse) error) HTTPRequest {
	return r.WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error {
		if err != nil {
			return err
		}
		return fn(ctx, response)
	})
}

func (r httpRequest) WithOnError(fn Callback) HTTPRequest {
	return r.WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error {
		if err == nil {
			return nil
		}
		return fn(ctx, response, err)
	})
}

func (r httpRequest) Send(ctx context.Context) (HTTPResponse, any, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rawResponse, result, err := r.sender.Send(ctx, r)
	response := &httpResponse{Definition: r.definition, raw: rawResponse, result: result, err: err}
	for _, fn := range r.callbacks {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		response.err = fn(ctx, response, response.err)
	}
	return response, response.result, response.err
}

func (r httpRequest) SendOrErr(ctx context.Context) error {
	_, _, err := r.Send(ctx)
	return err
}
