package request

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const APIRequestSpanName = "keboola.go.jsonapi.request"

// APIRequest is a composition of Sendable values with the result of the R type.
type APIRequest[R Result] interface {
	// WithBefore registers a callback invoked before sending, an error stops the request.
	WithBefore(fn func(ctx context.Context) error) APIRequest[R]
	// WithOnComplete registers a callback invoked when all requests are completed.
	// The returned error replaces the original one.
	WithOnComplete(fn func(ctx context.Context, result R, err error) error) APIRequest[R]
	// WithOnSuccess registers a callback invoked if there is no error.
	WithOnSuccess(fn func(ctx context.Context, result R) error) APIRequest[R]
	// WithOnError registers a callback invoked if there is an error.
	WithOnError(fn func(ctx context.Context, err error) error) APIRequest[R]
	// WithAttributes adds attributes to the request span, if the telemetry is enabled.
	WithAttributes(attrs ...attribute.KeyValue) APIRequest[R]
	// Send sends all requests concurrently and returns the result.
	Send(ctx context.Context) (result R, err error)
	SendOrErr(ctx context.Context) error
}

// ParallelAPIRequests is a Sendable sending all requests concurrently.
type ParallelAPIRequests []Sendable

type withTracer interface {
	Tracer() trace.Tracer
}

// Parallel composes requests to one Sendable, all errors are returned.
func Parallel(requests ...Sendable) ParallelAPIRequests {
	return requests
}

func (v ParallelAPIRequests) SendOrErr(ctx context.Context) error {
	wg := NewWaitGroup(ctx)
	for _, r := range v {
		wg.Send(r)
	}
	return wg.Wait()
}

// NewAPIRequest creates an APIRequest from at least one Sendable.
// The result value is returned from the Send method, the requests usually fill it by callbacks.
func NewAPIRequest[R Result](result R, requests ...Sendable) APIRequest[R] {
	if len(requests) == 0 {
		panic(fmt.Errorf("at least one request must be provided"))
	}
	return apiRequest[R]{requests: requests, result: result}
}

// NewNoOperationAPIRequest returns an APIRequest which sends nothing and returns the result.
func NewNoOperationAPIRequest[R Result](result R) APIRequest[R] {
	return apiRequest[R]{result: result}
}

type apiRequest[R Result] struct {
	result   R
	requests []Sendable
	before   []func(ctx context.Context) error
	after    []func(ctx context.Context, result R, err error) error
	attrs    []attribute.KeyValue
}

func (r apiRequest[R]) WithBefore(fn func(ctx context.Context) error) APIRequest[R] {
	r.before = append(r.before[:len(r.before):len(r.before)], fn)
	return r
}

func (r apiRequest[R]) WithOnComplete(fn func(ctx context.Context, result R, err error) error) APIRequest[R] {
	r.after = append(r.after[:len(r.after):len(r.after)], fn)
	return r
}

func (r apiRequest[R]) WithOnSuccess(fn func(ctx context.Context, result R) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, result R, err error) error {
		if err != nil {
			return err
		}
		return fn(ctx, result)
	})
}

func (r apiRequest[R]) WithOnError(fn func(ctx context.Context, err error) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, _ R, err error) error {
		if err == nil {
			return nil
		}
		return fn(ctx, err)
	})
}

func (r apiRequest[R]) WithAttributes(attrs ...attribute.KeyValue) APIRequest[R] {
	r.attrs = append(r.attrs[:len(r.attrs):len(r.attrs)], attrs...)
	return r
}

func (r apiRequest[R]) Send(ctx context.Context) (result R, err error) {
	if span, spanCtx := r.startSpan(ctx); span != nil {
		ctx = spanCtx
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}()
	}

	if err := ctx.Err(); err != nil {
		return r.result, err
	}
	for _, fn := range r.before {
		if err := fn(ctx); err != nil {
			return r.result, err
		}
	}
	if err := ctx.Err(); err != nil {
		return r.result, err
	}

	wg := NewWaitGroup(ctx)
	for _, request := range r.requests {
		wg.Send(request)
	}
	err = wg.Wait()

	for _, fn := range r.after {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.result, ctxErr
		}
		err = fn(ctx, r.result, err)
	}
	return r.result, err
}

func (r apiRequest[R]) SendOrErr(ctx context.Context) error {
	_, err := r.Send(ctx)
	return err
}

// startSpan returns nil if the first request has no tracer.
func (r apiRequest[R]) startSpan(ctx context.Context) (trace.Span, context.Context) {
	if len(r.requests) == 0 {
		return nil, ctx
	}
	v, ok := r.requests[0].(withTracer)
	if !ok {
		return nil, ctx
	}
	tracer := v.Tracer()
	if tracer == nil {
		return nil, ctx
	}

	var resultType string
	if t := reflect.TypeOf(r.result); t != nil {
		resultType = t.String()
	}
	ctx, span := tracer.Start(
		ctx,
		APIRequestSpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			// DataDog span type
			attribute.String("span.kind", "client"),
			attribute.String("span.type", "http"),
			attribute.Int("api.requests_count", len(r.requests)),
			attribute.String("api.result_type", resultType),
		),
		trace.WithAttributes(r.attrs...),
	)
	return span, ctx
}
