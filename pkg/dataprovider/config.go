package dataprovider

import (
	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/keboola/go-jsonapi-client/pkg/client"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

type config struct {
	client         *client.Client
	sender         request.Sender
	retry          *client.RetryConfig
	overrides      Settings
	tracerProvider otelTrace.TracerProvider
	meterProvider  otelMetric.MeterProvider
}

// Option for the New function.
type Option func(c *config)

func newConfig(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClient sets the HTTP client, telemetry options are applied to it.
// The retry config of the client is replaced, see the WithRetry option.
func WithClient(cl client.Client) Option {
	return func(c *config) {
		c.client = &cl
		c.sender = nil
	}
}

// WithSender sets a custom request sender, telemetry options are ignored.
func WithSender(sender request.Sender) Option {
	return func(c *config) {
		c.sender = sender
		c.client = nil
	}
}

// WithRetry enables retries of the client, so one invocation may send more than one HTTP request.
// By default, each invocation sends exactly one HTTP request. It has no effect with WithSender.
func WithRetry(retry client.RetryConfig) Option {
	return func(c *config) {
		c.retry = &retry
	}
}

func WithTracerProvider(v otelTrace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = v
	}
}

func WithMeterProvider(v otelMetric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = v
	}
}

// newSender returns the custom sender, or the client with applied retry and telemetry.
func (c config) newSender() request.Sender {
	if c.sender != nil {
		return c.sender
	}

	cl := client.New()
	if c.client != nil {
		cl = *c.client
	}

	retry := client.NoRetry()
	if c.retry != nil {
		retry = *c.retry
	}
	cl = cl.WithRetry(retry)

	if c.tracerProvider != nil || c.meterProvider != nil {
		cl = cl.WithTelemetry(c.tracerProvider, c.meterProvider)
	}
	return cl
}
