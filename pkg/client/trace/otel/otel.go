// Package otel provides OpenTelemetry tracing and metrics for HTTP client requests.
//
// The package provides 2 levels of telemetry:
//
// 1. High-level telemetry, for each "logical" request sent by the client:
//   - Span "keboola.go.jsonapi.client.request" wraps all retries together.
//   - Span "keboola.go.jsonapi.client.request.body.parse" tracks response receiving and parsing (as a stream).
//   - Span "keboola.go.jsonapi.client.retry.delay" tracks delay before retry.
//   - Metrics names start with "keboola.go.jsonapi.client.".
//
// 2. Low-level telemetry, for each sent HTTP request, including retries:
//   - Span "http.request" with child spans "http.dns", "http.connect" and "http.tls".
//   - Metrics names start with "keboola.go.jsonapi.http.".
package otel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelMetric "go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/keboola/go-jsonapi-client/pkg/client/trace"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

const (
	traceAppName     = "github.com/keboola/go-jsonapi-client"
	attrResourceName = attribute.Key("resource.name")
	// Low-level spans, for each retry.
	httpRequestSpanName      = "http.request"
	httpDNSSpanName          = "http.dns"
	httpConnectSpanName      = "http.connect"
	httpTLSHandshakeSpanName = "http.tls"
	attrDNSAddresses         = attribute.Key("http.dns.addrs")
	attrRemoteAddr           = attribute.Key("http.remote")
	attrConnectionNetwork    = attribute.Key("http.conn.network")
	attrConnectionReused     = attribute.Key("http.conn.reused")
	attrReadBytes            = attribute.Key("http.read_bytes")
	attrRetryAttempt         = attribute.Key("http.retry.attempt")
	attrRetryDelayMs         = attribute.Key("http.retry.delay_ms")
	// High-level spans.
	clientSpanPrefix         = "keboola.go.jsonapi.client."
	clientRequestSpanName    = clientSpanPrefix + "request"
	clientBodyParseSpanName  = clientSpanPrefix + "request.body.parse"
	clientRetryDelaySpanName = clientSpanPrefix + "retry.delay"
	// Extra attributes for DataDog.
	attrSpanKind            = attribute.Key("span.kind")
	attrSpanKindValueClient = "client"
	attrSpanType            = attribute.Key("span.type")
	attrSpanTypeValueHTTP   = "http"
)

// NewTrace creates a trace.Factory, which reports spans and metrics of each request.
// Nil providers are replaced by no-op implementations.
func NewTrace(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...Option) trace.Factory {
	cfg := newConfig(opts)
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	tracer := tracerProvider.Tracer(traceAppName)
	meters := newMeters(meterProvider.Meter(traceAppName))

	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
		t := &requestTrace{config: cfg, tracer: tracer, meters: meters, attrs: newAttributes(cfg, reqDef)}
		t.start(ctx)
		return t.rootCtx, t.hooks()
	}
}

// requestTrace holds the state of one Client.Send call.
// Hooks are called sequentially, the retries are not parallel.
type requestTrace struct {
	config config
	tracer otelTrace.Tracer
	meters *meters
	attrs  *attributes

	rootCtx   context.Context
	rootSpan  otelTrace.Span
	startTime time.Time

	httpCtx       context.Context
	httpSpan      otelTrace.Span
	httpStartTime time.Time

	retryDelaySpan otelTrace.Span
	bodyParseSpan  otelTrace.Span
	bodyParseStart time.Time

	dnsSpan     otelTrace.Span
	connectSpan otelTrace.Span
	tlsSpan     otelTrace.Span
}

func (t *requestTrace) hooks() *trace.ClientTrace {
	tc := &trace.ClientTrace{
		HTTPRequestStart: t.httpRequestStart,
		HTTPRequestDone:  t.httpRequestDone,
		RetryDelay:       t.retryDelay,
		BodyParseStart:   t.bodyParseStarted,
		BodyParseDone:    t.bodyParseDone,
		RequestProcessed: t.requestProcessed,
	}
	tc.DNSStart = t.dnsStart
	tc.DNSDone = t.dnsDone
	tc.ConnectStart = t.connectStart
	tc.ConnectDone = t.connectDone
	tc.GotConn = t.gotConn
	tc.TLSHandshakeStart = t.tlsStart
	tc.TLSHandshakeDone = t.tlsDone
	return tc
}

func (t *requestTrace) start(ctx context.Context) {
	t.startTime = time.Now()
	t.meters.clientInFlight.Add(ctx, 1, otelMetric.WithAttributes(t.attrs.definition...))
	t.rootCtx, t.rootSpan = t.tracer.Start(
		ctx,
		clientRequestSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(
			attrResourceName.String(t.attrs.resource),
			attrSpanKind.String(attrSpanKindValueClient),
			attrSpanType.String(attrSpanTypeValueHTTP),
		),
		otelTrace.WithAttributes(t.attrs.definition...),
		otelTrace.WithAttributes(t.attrs.definitionExtra...),
	)
	t.httpCtx = t.rootCtx
}

func (t *requestTrace) requestProcessed(_ any, err error) {
	// Same attributes as in the start method, so the counter is decremented
	t.meters.clientInFlight.Add(t.rootCtx, -1, otelMetric.WithAttributes(t.attrs.definition...))
	t.meters.clientDuration.Record(
		t.rootCtx,
		durationMs(t.startTime),
		otelMetric.WithAttributes(t.attrs.definition...),
		otelMetric.WithAttributes(t.attrs.httpResponse...),
	)

	endSpan(&t.retryDelaySpan, nil)
	endSpan(&t.bodyParseSpan, nil)
	endSpan(&t.httpSpan, nil)

	// Attributes from the last response
	t.rootSpan.SetAttributes(t.attrs.httpResponse...)
	t.rootSpan.SetAttributes(t.attrs.httpResponseExtra...)
	endSpan(&t.rootSpan, err)
}

func (t *requestTrace) httpRequestStart(req *http.Request) {
	endSpan(&t.retryDelaySpan, nil)

	t.httpStartTime = time.Now()
	t.attrs.SetFromRequest(req)
	t.httpCtx, t.httpSpan = t.tracer.Start(
		t.rootCtx,
		httpRequestSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(
			attrResourceName.String(t.attrs.resource),
			attrSpanKind.String(attrSpanKindValueClient),
			attrSpanType.String(attrSpanTypeValueHTTP),
		),
		otelTrace.WithAttributes(t.attrs.httpRequest...),
		otelTrace.WithAttributes(t.attrs.httpRequestExtra...),
	)
	if attempt, ok := trace.RetryAttempt(req.Context()); ok {
		t.httpSpan.SetAttributes(attrRetryAttempt.Int(attempt))
	}

	// Inject trace headers
	if t.config.propagators != nil {
		t.config.propagators.Inject(t.httpCtx, propagation.HeaderCarrier(req.Header))
	}

	t.meters.httpInFlight.Add(t.rootCtx, 1, otelMetric.WithAttributes(t.attrs.httpRequest...))
}

func (t *requestTrace) httpRequestDone(res *http.Response, err error) {
	t.attrs.SetFromResponse(res, err)

	// Same attributes as in the httpRequestStart method, so the counter is decremented
	t.meters.httpInFlight.Add(t.rootCtx, -1, otelMetric.WithAttributes(t.attrs.httpRequest...))
	t.meters.httpDuration.Record(
		t.rootCtx,
		durationMs(t.httpStartTime),
		otelMetric.WithAttributes(t.attrs.httpRequest...),
		otelMetric.WithAttributes(t.attrs.httpResponse...),
	)

	if t.httpSpan == nil {
		return
	}
	t.httpSpan.SetAttributes(t.attrs.httpResponse...)
	t.httpSpan.SetAttributes(t.attrs.httpResponseExtra...)
	if err == nil && res != nil && res.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf(`HTTP status code: %d %s`, res.StatusCode, http.StatusText(res.StatusCode))
	}
	if err != nil {
		endSpan(&t.httpSpan, err)
	}
	// On success, the span is ended when the body is parsed, or by the next attempt
}

func (t *requestTrace) retryDelay(attempt int, delay time.Duration) {
	endSpan(&t.httpSpan, nil)
	_, t.retryDelaySpan = t.tracer.Start(
		t.rootCtx,
		clientRetryDelaySpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(t.attrs.httpResponse...),
		otelTrace.WithAttributes(
			attrRetryAttempt.Int(attempt),
			attrRetryDelayMs.Int64(delay.Milliseconds()),
		),
	)
}

func (t *requestTrace) bodyParseStarted(_ *http.Response) {
	t.bodyParseStart = time.Now()
	_, t.bodyParseSpan = t.tracer.Start(
		t.httpCtx,
		clientBodyParseSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(t.attrs.httpResponse...),
	)
}

func (t *requestTrace) bodyParseDone(_ *http.Response, readBytes int64, _ any, _ error, parseErr error) {
	t.meters.parseDuration.Record(
		t.rootCtx,
		durationMs(t.bodyParseStart),
		otelMetric.WithAttributes(t.attrs.definition...),
		otelMetric.WithAttributes(t.attrs.httpResponse...),
	)
	if t.bodyParseSpan != nil {
		t.bodyParseSpan.SetAttributes(attrReadBytes.Int64(readBytes))
	}
	endSpan(&t.bodyParseSpan, parseErr)
	if t.httpSpan != nil {
		t.httpSpan.SetAttributes(attrReadBytes.Int64(readBytes))
	}
	endSpan(&t.httpSpan, nil)
}

func (t *requestTrace) dnsStart(info httptrace.DNSStartInfo) {
	_, t.dnsSpan = t.tracer.Start(
		t.httpCtx,
		httpDNSSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(semconv.NetHostNameKey.String(info.Host)),
	)
}

func (t *requestTrace) dnsDone(info httptrace.DNSDoneInfo) {
	if t.dnsSpan == nil {
		return
	}
	var addrs []string
	for _, addr := range info.Addrs {
		addrs = append(addrs, addr.String())
	}
	t.dnsSpan.SetAttributes(attrDNSAddresses.String(strings.Join(addrs, ";")))
	endSpan(&t.dnsSpan, info.Err)
}

func (t *requestTrace) connectStart(network, addr string) {
	_, t.connectSpan = t.tracer.Start(
		t.httpCtx,
		httpConnectSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(attrRemoteAddr.String(addr), attrConnectionNetwork.String(network)),
	)
}

func (t *requestTrace) connectDone(_, _ string, err error) {
	endSpan(&t.connectSpan, err)
}

func (t *requestTrace) gotConn(info httptrace.GotConnInfo) {
	if t.httpSpan != nil {
		t.httpSpan.SetAttributes(attrConnectionReused.Bool(info.Reused))
	}
}

func (t *requestTrace) tlsStart() {
	_, t.tlsSpan = t.tracer.Start(t.httpCtx, httpTLSHandshakeSpanName, otelTrace.WithSpanKind(otelTrace.SpanKindClient))
}

func (t *requestTrace) tlsDone(_ tls.ConnectionState, err error) {
	endSpan(&t.tlsSpan, err)
}

// endSpan ends the span, if it is not nil, and clears the reference.
func endSpan(span *otelTrace.Span, err error) {
	if *span == nil {
		return
	}
	if err != nil {
		(*span).RecordError(err)
		(*span).SetStatus(codes.Error, err.Error())
	}
	(*span).End()
	*span = nil
}
