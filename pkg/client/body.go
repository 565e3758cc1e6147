package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/keboola/go-jsonapi-client/pkg/client/decode"
	"github.com/keboola/go-jsonapi-client/pkg/request"
)

// requestBody returns a new reader of the request body, it is called again before each retry.
// A value not covered by the raw types is encoded to JSON, if the Content-Type allows it.
func requestBody(r request.HTTPRequest) (io.ReadCloser, error) {
	body := r.RequestBody()
	switch v := body.(type) {
	case string:
		return io.NopCloser(strings.NewReader(v)), nil
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), nil
	case io.ReadSeekCloser:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return v, nil
	case io.ReadSeeker:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(v), nil
	}

	if !isJSONContentType(r.RequestHeader().Get("Content-Type")) {
		return nil, fmt.Errorf(`unsupported body type "%T"`, body)
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
	}
	return io.NopCloser(bytes.NewReader(encoded)), nil
}

// readResponse maps the response body to the result or to the error definition.
// The parseErr is returned if the body cannot be read or decoded.
func readResponse(res *http.Response, resultDef any, errDef error) (result any, mappedErr error, parseErr error) {
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil, nil, nil
	}

	body, err := decode.Decode(res.Body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode response: %w", err)
	}
	defer body.Close()

	isJSON := isJSONContentType(res.Header.Get("Content-Type"))

	// A JSON error body has priority over the result definition
	if res.StatusCode >= 400 && errDef != nil && isJSON {
		if err := mapErrorBody(res, body, errDef); err != nil {
			return nil, nil, err
		}
		return nil, errDef, nil
	}

	if result, ok, err := readRawResult(body, resultDef); ok || err != nil {
		return result, nil, err
	}

	if isJSON && resultDef != nil && res.StatusCode >= 200 && res.StatusCode < 300 {
		if err := json.NewDecoder(body).Decode(resultDef); err != nil {
			return nil, nil, fmt.Errorf(`cannot decode JSON result: %w`, err)
		}
		return resultDef, nil, nil
	}

	// Drain, so the connection can be reused
	_, _ = io.Copy(io.Discard, body)
	return nil, nil, nil
}

// readRawResult copies the body to a result definition which needs no decoding.
// The ok is false if the definition is not one of the raw types.
func readRawResult(body io.Reader, resultDef any) (result any, ok bool, err error) {
	switch v := resultDef.(type) {
	case *[]byte:
		if *v, err = io.ReadAll(body); err != nil {
			return nil, true, fmt.Errorf(`cannot read response body: %w`, err)
		}
		return v, true, nil
	case *string:
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return nil, true, fmt.Errorf(`cannot read response body: %w`, err)
		}
		*v = string(bodyBytes)
		return v, true, nil
	case io.Writer:
		if _, err := io.Copy(v, body); err != nil {
			return nil, true, fmt.Errorf(`cannot read response body: %w`, err)
		}
		if c, isCloser := v.(io.Closer); isCloser {
			if err := c.Close(); err != nil {
				return nil, true, fmt.Errorf(`cannot read response body: %w`, err)
			}
		}
		return v, true, nil
	default:
		return nil, false, nil
	}
}
