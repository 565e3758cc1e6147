// Package client contains Client, the default request.Sender implementation based on the net/http package.
//
// The Client is immutable, each With* method returns a modified copy.
// It injects common headers, resolves URLs against the base URL, retries failed attempts
// and maps JSON responses to the result and error definitions of the request.
// Trace hooks (see the trace package) and OpenTelemetry (see the trace/otel package) are optional.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/keboola/go-jsonapi-client/pkg/client/counter"
	"github.com/keboola/go-jsonapi-client/pkg/client/trace"
	"github.com/keboola/go-jsonapi-client/pkg/client/trace/otel"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

const (
	DefaultUserAgent = "keboola-go-jsonapi-client"
	traceAppName     = "github.com/keboola/go-jsonapi-client"
)

type Client struct {
	transport      http.RoundTripper
	baseURL        *url.URL
	header         http.Header
	retry          RetryConfig
	tracer         otelTrace.Tracer
	traceFactories []trace.Factory
}

// New creates the Client with the default transport and the default retry.
func New() Client {
	header := make(http.Header)
	header.Set("User-Agent", DefaultUserAgent)
	header.Set("Accept-Encoding", "gzip, br")
	return Client{transport: DefaultTransport(), header: header, retry: DefaultRetry()}
}

// WithBaseURL sets the URL, relative request URLs are resolved against it.
func (c Client) WithBaseURL(baseURL string) Client {
	v, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURL, err))
	}
	c.baseURL = v
	return c
}

func (c Client) WithUserAgent(userAgent string) Client {
	return c.WithHeader("User-Agent", userAgent)
}

// WithHeader sets a header sent with each request, a request header of the same key has priority.
func (c Client) WithHeader(key, value string) Client {
	return c.WithHeaders(map[string]string{key: value})
}

// WithHeaders sets multiple headers sent with each request.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

func (c Client) WithRetry(retry RetryConfig) Client {
	c.retry = retry
	return c
}

// WithTelemetry enables OpenTelemetry spans and metrics. A nil provider means no-op.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	if tracerProvider != nil {
		c.tracer = tracerProvider.Tracer(traceAppName)
	}
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// AndTrace registers trace hooks, hooks of multiple factories are invoked in the registration order.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(c.traceFactories[:len(c.traceFactories):len(c.traceFactories)], fn)
	return c
}

// Tracer returns nil if the telemetry is not enabled.
func (c Client) Tracer() otelTrace.Tracer {
	return c.tracer
}

// Send implements the request.Sender interface.
func (c Client) Send(ctx context.Context, reqDef request.HTTPRequest) (res *http.Response, result any, err error) {
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	ctx, tc := c.startTrace(ctx, reqDef)
	if tc != nil && tc.RequestProcessed != nil {
		defer func() {
			tc.RequestProcessed(result, err)
		}()
	}

	req, err := c.newHTTPRequest(ctx, reqDef)
	if err != nil {
		return nil, nil, err
	}

	native := http.Client{
		Timeout:   c.retry.TotalRequestTimeout,
		Transport: roundTripper{trace: tc, retry: c.retry, wrapped: c.transport},
	}
	startedAt := time.Now()
	res, err = native.Do(req)
	if err != nil {
		return nil, nil, sendError(startedAt, c.retry.TotalRequestTimeout, req, err)
	}

	if tc != nil && tc.BodyParseStart != nil {
		tc.BodyParseStart(res)
	}
	body := counter.NewReadCloser(res.Body, nil)
	res.Body = body
	mappedResult, mappedErr, parseErr := readResponse(res, reqDef.ResultDef(), reqDef.ErrorDef())
	if tc != nil && tc.BodyParseDone != nil {
		tc.BodyParseDone(res, body.Bytes(), mappedResult, mappedErr, parseErr)
	}

	switch {
	case parseErr != nil:
		return res, nil, fmt.Errorf(`cannot process request %s "%s": %w`, req.Method, req.URL.String(), parseErr)
	case mappedErr != nil:
		return res, nil, mappedErr
	case res.StatusCode >= 400:
		return res, nil, fmt.Errorf(`request %s "%s" failed: %d %s`, req.Method, req.URL.String(), res.StatusCode, http.StatusText(res.StatusCode))
	default:
		return res, mappedResult, nil
	}
}

// startTrace composes hooks of all trace factories, the first registered hook is invoked first.
func (c Client) startTrace(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
	var composed *trace.ClientTrace
	for _, factory := range c.traceFactories {
		var t *trace.ClientTrace
		if ctx, t = factory(ctx, reqDef); t != nil {
			t.Compose(composed)
			composed = t
		}
	}
	if composed != nil {
		ctx = httptrace.WithClientTrace(ctx, &composed.ClientTrace)
	}
	return ctx, composed
}

// newHTTPRequest converts the definition to a standard request,
// the global headers and the base URL are applied.
func (c Client) newHTTPRequest(ctx context.Context, reqDef request.HTTPRequest) (*http.Request, error) {
	// Method and URL panic if they are not set
	method := reqDef.Method()
	rawURL := reqDef.URL().String()

	for key, value := range reqDef.PathParams() {
		rawURL = strings.ReplaceAll(rawURL, url.PathEscape("{"+key+"}"), url.PathEscape(value))
	}

	var reqURL *url.URL
	var err error
	if c.baseURL != nil {
		reqURL, err = c.baseURL.Parse(strings.TrimLeft(rawURL, "/"))
	} else {
		reqURL, err = url.Parse(rawURL)
	}
	if err != nil {
		return nil, err
	}

	// Query parameters from the definition extend the URL query
	if params := reqDef.QueryParams(); len(params) > 0 {
		query := reqURL.Query()
		for key, values := range params {
			query[key] = values
		}
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header = c.header.Clone()
	for key, values := range reqDef.RequestHeader() {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if reqDef.RequestBody() != nil {
		// GetBody is also used by the retries and redirects
		req.GetBody = func() (io.ReadCloser, error) {
			body, err := requestBody(reqDef)
			if err != nil {
				return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), err)
			}
			return body, nil
		}
		if req.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}

	return req, nil
}
