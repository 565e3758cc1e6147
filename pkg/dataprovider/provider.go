package dataprovider

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/keboola/go-jsonapi-client/pkg/request"
)

const (
	attrVerb     = attribute.Key("dataprovider.verb")
	attrResource = attribute.Key("dataprovider.resource")
)

// Provider is bound to an API root, settings overrides and a request sender.
// It is immutable and safe for concurrent use.
type Provider struct {
	apiRoot   string
	sender    request.Sender
	overrides Settings
}

// New creates a data provider for the API root, for example "https://example.com/api".
func New(apiRoot string, opts ...Option) *Provider {
	cfg := newConfig(opts)
	return &Provider{
		apiRoot:   strings.TrimRight(apiRoot, "/"),
		sender:    cfg.newSender(),
		overrides: cfg.overrides,
	}
}

func (p *Provider) APIRoot() string {
	return p.apiRoot
}

func (p *Provider) Sender() request.Sender {
	return p.sender
}

// Settings returns the defaults merged with the overrides.
func (p *Provider) Settings() Settings {
	return Resolve(DefaultSettings(), p.overrides)
}

// Request creates a request definition for the verb, resource and params.
// The result type depends on the verb, see the Result interface.
//
// An unsupported verb or invalid params result in an error on Send, no HTTP request is sent.
func (p *Provider) Request(verb Verb, resource string, params Params) request.APIRequest[Result] {
	return newAPIRequest[Result](p, verb, resource, params)
}

func newAPIRequest[R Result](p *Provider, verb Verb, resource string, params Params) request.APIRequest[R] {
	result, sendable := p.newRequest(verb, resource, params)
	typed, _ := result.(R)
	return request.
		NewAPIRequest(typed, sendable).
		WithAttributes(attrVerb.String(verb.String()), attrResource.String(resource))
}

func (p *Provider) newRequest(verb Verb, resource string, params Params) (Result, request.Sendable) {
	result, err := newResult(verb)
	if err != nil {
		return nil, request.NewReqDefinitionError(err)
	}

	// Settings are resolved for each invocation
	settings := p.Settings()
	d, err := Map(p.apiRoot, verb, resource, params, settings)
	if err != nil {
		return result, request.NewReqDefinitionError(err)
	}

	var body []byte
	req := request.NewHTTPRequest(p.sender).
		WithMethod(d.Method).
		WithURL(d.URL).
		WithHeaders(d.Header).
		WithResult(&body).
		WithError(&APIError{}).
		WithOnSuccess(func(_ context.Context, response request.HTTPResponse) error {
			return normalizeInto(result, verb, params, RawResponse{
				StatusCode: response.StatusCode(),
				Header:     response.ResponseHeader(),
				Body:       body,
			}, settings)
		})
	if d.HasBody() {
		req = req.WithBody(d.Body)
	}
	return result, req
}
