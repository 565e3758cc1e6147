package client_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/keboola/go-jsonapi-client/pkg/client"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

type testStruct struct {
	Foo string `json:"foo"`
}

type testError struct {
	ErrorMsg string `json:"error"`
	response *http.Response
}

func (e *testError) Error() string {
	return e.ErrorMsg
}

func (e *testError) SetResponse(response *http.Response) {
	e.response = response
}

type testWriteCloser struct {
	io.Writer
}

func (v testWriteCloser) Close() error {
	_, err := v.Write([]byte("<CLOSE>"))
	return err
}

func TestNew(t *testing.T) {
	t.Parallel()
	c := New()
	assert.NotNil(t, c)
	assert.Nil(t, c.Tracer())
}

func TestRequest(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.NewStringResponder(200, "test"))

	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://example.com"])
}

func TestBytesResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com", httpmock.NewJsonResponderOrPanic(200, map[string]any{"foo": "bar"}))

	ctx := context.Background()
	var resultDef []byte
	_, result, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(&resultDef).Send(ctx)
	assert.NoError(t, err)
	assert.Same(t, &resultDef, result)
	assert.Equal(t, []byte(`{"foo":"bar"}`), resultDef)
}

func TestWriterResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com", httpmock.NewJsonResponderOrPanic(200, map[string]any{"foo": "bar"}))

	ctx := context.Background()
	var out strings.Builder
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(io.Writer(&out)).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, `{"foo":"bar"}`, out.String())
}

func TestWriteCloserResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", "https://example.com", httpmock.NewJsonResponderOrPanic(200, map[string]any{"foo": "bar"}))

	ctx := context.Background()
	var out strings.Builder
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(testWriteCloser{Writer: &out}).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, `{"foo":"bar"}<CLOSE>`, out.String())
}

func TestJsonStructResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.NewJsonResponderOrPanic(200, map[string]any{"foo": "bar"}))

	ctx := context.Background()
	resultDef := &testStruct{}
	_, result, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(resultDef).Send(ctx)
	assert.NoError(t, err)
	assert.Same(t, resultDef, result)
	assert.Equal(t, &testStruct{Foo: "bar"}, result)
}

func TestJsonContentTypeWithCharset(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewStringResponse(200, `{"foo":"bar"}`)
		res.Header.Set("Content-Type", "application/vnd.api+json; charset=utf-8")
		return res, nil
	})

	ctx := context.Background()
	resultDef := &testStruct{}
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(resultDef).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, &testStruct{Foo: "bar"}, resultDef)
}

func TestJsonErrorResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.NewJsonResponderOrPanic(400, map[string]any{"error": "error message"}))

	ctx := context.Background()
	var resultDef []byte
	errDef := &testError{}
	_, result, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(&resultDef).WithError(errDef).Send(ctx)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, resultDef)
	assert.Same(t, errDef, err)
	assert.Equal(t, "error message", err.Error())
	require.NotNil(t, errDef.response)
	assert.Equal(t, 400, errDef.response.StatusCode)
}

func TestMalformedJsonErrorResult(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewStringResponse(500, `{"error":`)
		res.Header.Set("Content-Type", "application/json")
		return res, nil
	})

	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithError(&testError{}).Send(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `cannot process request GET "https://example.com": cannot decode JSON error:`)
}

func TestGenericHTTPError(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.NewStringResponder(404, "not found"))

	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithError(&testError{}).Send(ctx)
	assert.Error(t, err)
	assert.Equal(t, `request GET "https://example.com" failed: 404 Not Found`, err.Error())
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com/api/items/123`, httpmock.NewStringResponder(200, "test"))

	ctx := context.Background()
	c = c.WithBaseURL("https://example.com/api")
	_, _, err := request.NewHTTPRequest(c).WithGet("/items/{id}").AndPathParam("id", "123").Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://example.com/api/items/123"])
}

func TestQueryParamsMergedWithURLQuery(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com/items?a=1&b=2`, httpmock.NewStringResponder(200, "test"))

	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com/items?a=1").AndQueryParam("b", "2").Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://example.com/items?a=1&b=2"])
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	var header http.Header
	transport.RegisterResponder("GET", `https://example.com`, func(req *http.Request) (*http.Response, error) {
		header = req.Header
		return httpmock.NewStringResponse(200, "test"), nil
	})

	ctx := context.Background()
	c = c.
		WithUserAgent("my-user-agent").
		WithHeader("X-Global", "global").
		WithHeaders(map[string]string{"X-Override": "global", "Authorization": "Bearer token"})
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").AndHeader("X-Override", "request").Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "my-user-agent", header.Get("User-Agent"))
	assert.Equal(t, "gzip, br", header.Get("Accept-Encoding"))
	assert.Equal(t, "global", header.Get("X-Global"))
	assert.Equal(t, "request", header.Get("X-Override"))
	assert.Equal(t, "Bearer token", header.Get("Authorization"))
}

func TestClientIsImmutable(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	var header http.Header
	transport.RegisterResponder("GET", `https://example.com`, func(req *http.Request) (*http.Response, error) {
		header = req.Header
		return httpmock.NewStringResponse(200, "test"), nil
	})

	ctx := context.Background()
	_ = c.WithHeader("X-Foo", "bar")
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.NoError(t, err)
	assert.Empty(t, header.Get("X-Foo"))
}

func TestJSONBody(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	var body, contentType string
	transport.RegisterResponder("POST", `https://example.com`, func(req *http.Request) (*http.Response, error) {
		bytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(bytes)
		contentType = req.Header.Get("Content-Type")
		return httpmock.NewStringResponse(201, ""), nil
	})

	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithPost("https://example.com").WithJSONBody(map[string]any{"foo": "bar"}).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, `{"foo":"bar"}`, body)
	assert.Equal(t, "application/json", contentType)
}

func TestUnsupportedBody(t *testing.T) {
	t.Parallel()

	c, _ := NewMockedClient()
	ctx := context.Background()
	_, _, err := request.NewHTTPRequest(c).WithPost("https://example.com").WithBody(123).Send(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported body type "int"`)
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("DELETE", `https://example.com/items/1`, httpmock.NewStringResponder(204, ""))

	ctx := context.Background()
	var resultDef []byte
	response, result, err := request.NewHTTPRequest(c).WithDelete("https://example.com/items/1").WithResult(&resultDef).Send(ctx)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 204, response.StatusCode())
}

func TestContext_Canceled(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, func(request *http.Request) (*http.Response, error) {
		time.Sleep(100 * time.Millisecond)
		return httpmock.NewStringResponse(200, "test"), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `request GET "https://example.com" failed: canceled after`)
}

func TestContext_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := NewMockedClient()
	transport.RegisterResponder("GET", `https://example.com`, func(request *http.Request) (*http.Response, error) {
		time.Sleep(100 * time.Millisecond)
		return httpmock.NewStringResponse(200, "test"), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `request GET "https://example.com" failed: timeout after`)
}

func TestTransport(t *testing.T) {
	t.Parallel()
	cfg := DefaultTransportConfig()
	assert.Equal(t, cfg.MaxConnectionsPerHost, NewTransport(cfg).MaxConnsPerHost)
	assert.Equal(t, cfg.HTTP2PingTimeout, HTTP2Transport(cfg).PingTimeout)
	assert.NotNil(t, DefaultTransport())
}
