package dataprovider_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/keboola/go-jsonapi-client/pkg/dataprovider"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body        string
		userMessage string
		name        string
	}{
		{`{"error":"Not found"}`, "Not found", ""},
		{`{"message":"Forbidden"}`, "Forbidden", ""},
		{`{"errors":[{"code":"validation","detail":"Title is required"}]}`, "Title is required", "validation"},
		{`{"errors":[{"code":"validation","title":"Invalid"}]}`, "Invalid", "validation"},
		{`{}`, "Bad Request", ""},
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Scheme: "https", Host: "example.com", Path: "/api/posts"}}
	res := &http.Response{StatusCode: http.StatusBadRequest}
	for _, tc := range cases {
		apiErr := &APIError{}
		require.NoError(t, json.Unmarshal([]byte(tc.body), apiErr))
		apiErr.SetRequest(req)
		apiErr.SetResponse(res)
		assert.Equal(t, tc.userMessage, apiErr.ErrorUserMessage(), tc.body)
		assert.Equal(t, tc.name, apiErr.ErrorName(), tc.body)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode())
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	apiErr := &APIError{}
	assert.Equal(t, "unknown error", apiErr.Error())
	assert.Equal(t, 0, apiErr.StatusCode())

	apiErr.SetRequest(&http.Request{Method: http.MethodPut, URL: &url.URL{Scheme: "https", Host: "example.com", Path: "/api/posts/1"}})
	apiErr.SetResponse(&http.Response{StatusCode: http.StatusConflict})
	apiErr.Errors = []APIErrorDef{{Code: "conflict", Detail: "Version mismatch"}}
	assert.Equal(t, `Version mismatch, method: "PUT", url: "https://example.com/api/posts/1", httpCode: "409", errCode: "conflict"`, apiErr.Error())
}

func TestInvalidParamsError(t *testing.T) {
	t.Parallel()

	inner := errors.New("some error")
	err := error(&InvalidParamsError{Verb: VerbCreate, Err: inner})
	assert.Equal(t, "invalid CREATE params: some error", err.Error())
	assert.True(t, errors.Is(err, inner))

	err = &ResponseError{Verb: VerbGetMany, Err: ErrMissingData}
	assert.Equal(t, `invalid GET_MANY response: missing "data" field`, err.Error())
	assert.True(t, errors.Is(err, ErrMissingData))
}
