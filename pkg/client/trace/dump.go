package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/keboola/go-jsonapi-client/pkg/client/decode"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

// dumpMaxLength limits each dumped part, unless HTTP_DUMP_TRACE_FULL=true.
const dumpMaxLength = 2000

// DumpTracer writes each HTTP attempt, with headers and decoded body, to the writer.
// The output is not masked, it may contain tokens. Do not use it in production.
func DumpTracer(wr io.Writer) Factory {
	return func(ctx context.Context, _ request.HTTPRequest) (context.Context, *ClientTrace) {
		d := &dumper{wr: wr}
		return ctx, &ClientTrace{
			HTTPRequestStart: d.requestStart,
			HTTPRequestDone:  d.requestDone,
			RetryDelay:       d.retryDelay,
			RequestProcessed: d.processed,
		}
	}
}

type dumper struct {
	wr          io.Writer
	method      string
	uri         string
	statusCode  int
	lastErr     error
	requestDump []byte
	startedAt   time.Time
	headersAt   time.Time
}

func (d *dumper) requestStart(r *http.Request) {
	d.startedAt = time.Now()
	d.method = r.Method
	d.uri = r.URL.RequestURI()
	d.requestDump, _ = httputil.DumpRequestOut(r, true)
}

func (d *dumper) requestDone(r *http.Response, err error) {
	d.lastErr = err
	if r != nil {
		d.statusCode = r.StatusCode
		d.headersAt = time.Now()
	}

	d.printf("\n>>>>>> HTTP DUMP\n")
	d.part(string(d.requestDump))
	d.printf("------\n")
	switch {
	case err != nil:
		d.printf("ERROR: %s\n", err)
	case r != nil:
		d.response(r)
	}
	d.printf("<<<<<< HTTP DUMP END\n")
}

// response dumps headers and the decoded body, the raw body is restored for the client.
func (d *dumper) response(r *http.Response) {
	if headers, err := httputil.DumpResponse(r, false); err == nil {
		d.printf("%s\n", strings.TrimSpace(string(headers)))
	} else {
		d.printf("cannot dump response headers: %s\n", err)
	}
	if r.Body == nil {
		return
	}

	var raw bytes.Buffer
	var decoded strings.Builder
	reader, err := decode.Decode(io.NopCloser(io.TeeReader(r.Body, &raw)), r.Header.Get("Content-Encoding"))
	if err == nil {
		_, err = io.Copy(&decoded, reader)
	}
	r.Body = io.NopCloser(bytes.NewReader(raw.Bytes()))
	if err != nil {
		d.printf("cannot read response body: %s\n", err)
		return
	}
	d.printf("------\n")
	d.part(decoded.String())
}

func (d *dumper) retryDelay(attempt int, delay time.Duration) {
	d.printf("\n>>>>>> HTTP RETRY | %s %s | status=%d | error=%v | attempt=%d | delay=%s\n", d.method, d.uri, d.statusCode, d.lastErr, attempt, delay)
}

func (d *dumper) processed(_ any, err error) {
	d.printf(
		"\n>>>>>> HTTP REQUEST PROCESSED | %s %s | status=%d | error=%v | headers=%s | done=%s\n",
		d.method, d.uri, d.statusCode, err, d.headersAt.Sub(d.startedAt), time.Since(d.startedAt),
	)
}

func (d *dumper) part(str string) {
	str = strings.TrimSpace(str)
	if len(str) > dumpMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		d.printf("%s\n... (set env HTTP_DUMP_TRACE_FULL=true to see full output)\n", str[:dumpMaxLength])
		return
	}
	d.printf("%s\n", str)
}

func (d *dumper) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(d.wr, format, a...)
}
