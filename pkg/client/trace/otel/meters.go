package otel

import otelMetric "go.opentelemetry.io/otel/metric"

const (
	clientMeterPrefix = "keboola.go.jsonapi.client."
	httpMeterPrefix   = "keboola.go.jsonapi.http."
)

type meters struct {
	clientInFlight otelMetric.Int64UpDownCounter
	clientDuration otelMetric.Float64Histogram
	httpInFlight   otelMetric.Int64UpDownCounter
	httpDuration   otelMetric.Float64Histogram
	parseDuration  otelMetric.Float64Histogram
}

func newMeters(meter otelMetric.Meter) *meters {
	return &meters{
		clientInFlight: upDownCounter(meter, clientMeterPrefix+"request.in_flight", "HTTP client: in flight requests."),
		clientDuration: histogram(meter, clientMeterPrefix+"request.duration", "HTTP client: requests duration, including retries and parsing."),
		httpInFlight:   upDownCounter(meter, httpMeterPrefix+"request.in_flight", "HTTP request: in flight requests."),
		httpDuration:   histogram(meter, httpMeterPrefix+"request.duration", "HTTP request: duration until the response headers are received."),
		parseDuration:  histogram(meter, clientMeterPrefix+"request.parse.duration", "HTTP client: response body parsing duration."),
	}
}

func upDownCounter(meter otelMetric.Meter, name, desc string) otelMetric.Int64UpDownCounter {
	return mustInstrument(meter.Int64UpDownCounter(name, otelMetric.WithDescription(desc)))
}

func histogram(meter otelMetric.Meter, name, desc string) otelMetric.Float64Histogram {
	return mustInstrument(meter.Float64Histogram(name, otelMetric.WithDescription(desc), otelMetric.WithUnit("ms")))
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
