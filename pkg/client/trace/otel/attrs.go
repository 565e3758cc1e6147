package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/keboola/go-jsonapi-client/pkg/request"
)

const maskedAttrValue = "****"

type attributes struct {
	config config
	// resource is the URL path of the request definition, placeholders are not replaced
	resource string
	// definition attributes, for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes, for span only
	definitionExtra []attribute.KeyValue
	// httpRequest attributes of the last attempt, for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes of the last attempt, for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes of the last attempt, for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes of the last attempt, for span only
	httpResponseExtra []attribute.KeyValue
}

func newAttributes(cfg config, reqDef request.HTTPRequest) *attributes {
	reqURL := reqDef.URL()
	out := &attributes{config: cfg, resource: urlPathUnescape(reqURL.Path)}

	var resultType string
	if v := reflect.TypeOf(reqDef.ResultDef()); v != nil {
		resultType = v.String()
	}

	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", reqDef.Method()),
		attribute.String("definition.result.type", resultType),
		attribute.String("definition.url.path", out.resource),
		attribute.String("definition.url.host", reqURL.Host),
	}

	out.definitionExtra = append(out.definitionExtra, sortedAttrs("definition.header.", reqDef.RequestHeader(), cfg.headerValue)...)
	out.definitionExtra = append(out.definitionExtra, sortedAttrs("definition.params.query.", reqDef.QueryParams(), cfg.queryValue)...)
	for k, v := range reqDef.PathParams() {
		out.definitionExtra = append(out.definitionExtra, attribute.String("definition.params.path."+k, v))
	}
	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpRequest, v.httpRequestExtra = nil, nil
		return
	}

	urlClone := *req.URL
	query := urlClone.Query()
	for k, values := range query {
		query[k] = []string{v.config.queryValue(k, values)}
	}
	urlClone.RawQuery = query.Encode()
	urlClone.User = nil

	v.httpRequest = []attribute.KeyValue{
		semconv.HTTPMethodKey.String(req.Method),
		semconv.NetPeerNameKey.String(req.URL.Hostname()),
	}
	v.httpRequestExtra = append([]attribute.KeyValue{semconv.HTTPURLKey.String(urlClone.String())}, sortedAttrs("http.header.", req.Header, v.config.headerValue)...)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse, v.httpResponseExtra = nil, nil
	} else {
		v.httpResponse = []attribute.KeyValue{semconv.HTTPStatusCodeKey.Int(res.StatusCode)}
		v.httpResponseExtra = sortedAttrs("http.response.header.", res.Header, v.config.headerValue)
	}

	var netErr net.Error
	isNetErr := errors.As(err, &netErr)
	v.httpResponse = append(v.httpResponse,
		attribute.Bool("http.response.success", isSuccess(res, err)),
		attribute.Bool("http.response.error.net", isNetErr),
		attribute.Bool("http.response.error.timeout", isNetErr && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
	)
}

// sortedAttrs converts multi-value maps to attributes with a stable order.
func sortedAttrs(prefix string, values map[string][]string, valueFn func(string, []string) string) []attribute.KeyValue {
	var out []attribute.KeyValue
	for k, v := range values {
		out = append(out, attribute.String(prefix+strings.ToLower(k), valueFn(k, v)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

func urlPathUnescape(in string) string {
	out, err := url.PathUnescape(in)
	if err != nil {
		return in
	}
	return out
}
