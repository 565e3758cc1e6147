package trace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/keboola/go-jsonapi-client/pkg/request"
)

// LogTracer writes one line per request phase to the writer, lines are prefixed by a request number.
//
//	HTTP_REQUEST[0001] START GET "https://example.com/api/posts"
//	HTTP_REQUEST[0001] DONE  GET "https://example.com/api/posts" | 200 | 15ms
//	HTTP_REQUEST[0001] BODY  GET "https://example.com/api/posts" | 1ms
func LogTracer(wr io.Writer) Factory {
	var counter atomic.Uint64
	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *ClientTrace) {
		l := &requestLogger{wr: wr, id: counter.Add(1), reqDef: reqDef}
		t := &ClientTrace{
			HTTPRequestStart: l.start,
			HTTPRequestDone:  l.done,
			RetryDelay:       l.retry,
			RequestProcessed: l.processed,
		}
		t.ConnectStart = func(_, _ string) {
			l.connectStartedAt = time.Now()
		}
		t.GotConn = l.gotConn
		return ctx, t
	}
}

type requestLogger struct {
	wr               io.Writer
	id               uint64
	reqDef           request.HTTPRequest
	req              *http.Request
	statusCode       int
	connectStartedAt time.Time
	startedAt        time.Time
	doneAt           time.Time
}

func (l *requestLogger) start(r *http.Request) {
	l.req = r
	l.startedAt = time.Now()
	l.log("START", "")
}

func (l *requestLogger) gotConn(info httptrace.GotConnInfo) {
	switch {
	case !info.Reused:
		l.log("CONN ", fmt.Sprintf("new conn | %s", time.Since(l.connectStartedAt)))
	case info.WasIdle:
		l.log("CONN ", fmt.Sprintf("reused conn (was idle=%s)", info.IdleTime))
	default:
		l.log("CONN ", "reused conn")
	}
}

func (l *requestLogger) done(r *http.Response, err error) {
	l.doneAt = time.Now()
	suffix := ""
	if err == nil {
		l.statusCode = r.StatusCode
	} else {
		suffix = fmt.Sprintf(" | error=%s", err)
	}
	l.log("DONE ", fmt.Sprintf("%d | %s%s", l.statusCode, l.doneAt.Sub(l.startedAt), suffix))
}

func (l *requestLogger) retry(attempt int, delay time.Duration) {
	l.log("RETRY", fmt.Sprintf("%dx | %s", attempt, delay))
}

func (l *requestLogger) processed(_ any, err error) {
	suffix := ""
	if err != nil {
		suffix = fmt.Sprintf(" | error=%s", err)
	}
	l.log("BODY ", fmt.Sprintf("%s%s", time.Since(l.doneAt), suffix))
}

func (l *requestLogger) log(phase, details string) {
	// The request may fail before the first attempt, for example on an invalid URL
	method, url := l.reqDef.Method(), l.reqDef.URL().String()
	if l.req != nil {
		method, url = l.req.Method, l.req.URL.String()
	}
	line := fmt.Sprintf(`HTTP_REQUEST[%04d] %s %s "%s"`, l.id, phase, method, url)
	if details != "" {
		line += " | " + details
	}
	_, _ = fmt.Fprintln(l.wr, line)
}
