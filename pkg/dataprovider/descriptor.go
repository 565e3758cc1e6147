package dataprovider

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const contentTypeJSON = "application/json"

// Descriptor of an outbound HTTP request.
type Descriptor struct {
	Method string
	URL    string
	Header http.Header
	// Body is a JSON encoded payload, or empty if the request has no body.
	Body string
}

func (d Descriptor) HasBody() bool {
	return d.Body != ""
}

// Map maps the verb, the resource and the params to a request descriptor.
// Each header from the settings is attached to the request.
func Map(apiRoot string, verb Verb, resource string, params Params, settings Settings) (Descriptor, error) {
	if !verb.Valid() {
		return Descriptor{}, &UnsupportedVerbError{Verb: verb}
	}
	if params == nil {
		return Descriptor{}, newInvalidParamsError(verb, fmt.Errorf(`params are not set`))
	}
	if err := checkParamsType(params); err != nil {
		return Descriptor{}, newInvalidParamsError(verb, err)
	}
	if params.Verb() != verb {
		return Descriptor{}, newInvalidParamsError(verb, fmt.Errorf(`unexpected params type "%T"`, params))
	}
	if err := params.validate(); err != nil {
		return Descriptor{}, newInvalidParamsError(verb, err)
	}

	resource = strings.Trim(resource, "/")
	if resource == "" {
		return Descriptor{}, newInvalidParamsError(verb, fmt.Errorf(`resource is not set`))
	}
	resourceURL := strings.TrimRight(apiRoot, "/") + "/" + resource

	d := Descriptor{Method: http.MethodGet, Header: make(http.Header)}
	for k, v := range settings.Headers {
		d.Header.Set(k, v)
	}

	var err error
	switch p := params.(type) {
	case ListParams:
		start, end := p.Pagination.Range()
		d.URL = resourceURL + "?" + url.Values{
			"range[0]": {strconv.Itoa(start)},
			"range[1]": {strconv.Itoa(end)},
		}.Encode()
	case GetOneParams:
		d.URL, err = recordURL(resourceURL, p.ID)
	case CreateParams:
		d.Method = http.MethodPost
		d.URL = resourceURL
		d.Body, err = encodeBody(p.Data)
	case UpdateParams:
		d.Method = http.MethodPut
		if d.URL, err = recordURL(resourceURL, p.ID); err == nil {
			d.Body, err = encodeBody(p.Data)
		}
	case DeleteParams:
		d.Method = http.MethodDelete
		d.URL, err = recordURL(resourceURL, p.ID)
	case GetManyParams:
		ids := p.IDs
		if ids == nil {
			ids = []ID{}
		}
		var filter []byte
		if filter, err = json.Marshal(map[string]any{"ids": ids}); err == nil {
			d.URL = resourceURL + "?" + url.Values{"filter": {string(filter)}}.Encode()
		}
	default:
		err = fmt.Errorf(`unexpected params type "%T"`, params)
	}
	if err != nil {
		return Descriptor{}, newInvalidParamsError(verb, err)
	}

	if _, err := url.Parse(d.URL); err != nil {
		return Descriptor{}, newInvalidParamsError(verb, fmt.Errorf(`invalid request url: %w`, err))
	}

	if d.HasBody() && d.Header.Get("Content-Type") == "" {
		d.Header.Set("Content-Type", contentTypeJSON)
	}

	return d, nil
}

func recordURL(resourceURL string, id ID) (string, error) {
	str, err := idToString(id)
	if err != nil {
		return "", err
	}
	return resourceURL + "/" + url.PathEscape(str), nil
}

func encodeBody(data any) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf(`cannot encode data to JSON: %w`, err)
	}
	return string(body), nil
}
