package otel

import (
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

type config struct {
	propagators         propagation.TextMapPropagator
	redactedQueryParams map[string]struct{}
	redactedHeaders     map[string]struct{}
}

// Option for the NewTrace function.
type Option func(*config)

// WithPropagators enables injection of the trace context to the outgoing requests.
func WithPropagators(v propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagators = v
	}
}

// WithRedactedQueryParams masks values of the query parameters in span attributes.
func WithRedactedQueryParams(params ...string) Option {
	return func(c *config) {
		for _, p := range params {
			c.redactedQueryParams[strings.ToLower(p)] = struct{}{}
		}
	}
}

// WithRedactedHeaders masks values of the headers in span attributes.
// Authorization and cookie headers are always masked.
func WithRedactedHeaders(headers ...string) Option {
	return func(c *config) {
		for _, h := range headers {
			c.redactedHeaders[strings.ToLower(h)] = struct{}{}
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		redactedQueryParams: make(map[string]struct{}),
		redactedHeaders: map[string]struct{}{
			"authorization":       {},
			"www-authenticate":    {},
			"proxy-authenticate":  {},
			"proxy-authorization": {},
			"cookie":              {},
			"set-cookie":          {},
		},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func (c config) headerValue(key string, values []string) string {
	if _, found := c.redactedHeaders[strings.ToLower(key)]; found {
		return maskedAttrValue
	}
	return strings.Join(values, ";")
}

func (c config) queryValue(key string, values []string) string {
	if _, found := c.redactedQueryParams[strings.ToLower(key)]; found {
		return maskedAttrValue
	}
	return strings.Join(values, ";")
}
