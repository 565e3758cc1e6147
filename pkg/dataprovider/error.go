package dataprovider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedBody = errors.New("malformed response body")
	ErrMissingData   = errors.New(`missing "data" field`)
	ErrMissingMeta   = errors.New(`missing "meta" field`)
	ErrMissingTotal  = errors.New("missing total field")
)

// UnsupportedVerbError is returned for a verb outside the AllVerbs set.
// The request is never sent.
type UnsupportedVerbError struct {
	Verb Verb
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf(`unsupported data provider verb "%s"`, e.Verb)
}

// InvalidParamsError is returned if the params do not match the verb or contain invalid values.
// The request is never sent.
type InvalidParamsError struct {
	Verb Verb
	Err  error
}

func newInvalidParamsError(verb Verb, err error) *InvalidParamsError {
	return &InvalidParamsError{Verb: verb, Err: err}
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf(`invalid %s params: %s`, e.Verb, e.Err)
}

func (e *InvalidParamsError) Unwrap() error {
	return e.Err
}

// ResponseError is returned if a successful response cannot be normalized.
type ResponseError struct {
	Verb Verb
	Err  error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf(`invalid %s response: %s`, e.Verb, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// APIError represents an error response of the API.
// Both JSONAPI "errors" array and the simple {"error": "..."} or {"message": "..."} objects are supported.
type APIError struct {
	Message  string        `json:"error"`
	AltMsg   string        `json:"message"`
	Errors   []APIErrorDef `json:"errors"`
	request  *http.Request
	response *http.Response
}

// APIErrorDef is one item of the JSONAPI "errors" array.
type APIErrorDef struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	msg := e.ErrorUserMessage()
	if e.request != nil {
		msg += fmt.Sprintf(`, method: "%s", url: "%s"`, e.request.Method, e.request.URL)
	}
	if e.response != nil {
		msg += fmt.Sprintf(`, httpCode: "%d"`, e.StatusCode())
	}
	if code := e.ErrorName(); code != "" {
		msg += fmt.Sprintf(`, errCode: "%s"`, code)
	}
	return msg
}

// ErrorName returns the code of the first JSONAPI error, if any.
func (e *APIError) ErrorName() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Code
	}
	return ""
}

// ErrorUserMessage returns error message for end user.
func (e *APIError) ErrorUserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.AltMsg != "":
		return e.AltMsg
	case len(e.Errors) > 0 && e.Errors[0].Detail != "":
		return e.Errors[0].Detail
	case len(e.Errors) > 0 && e.Errors[0].Title != "":
		return e.Errors[0].Title
	case e.response != nil:
		return http.StatusText(e.response.StatusCode)
	default:
		return "unknown error"
	}
}

// StatusCode returns HTTP status code, or 0 if the response is not set.
func (e *APIError) StatusCode() int {
	if e.response == nil {
		return 0
	}
	return e.response.StatusCode
}

// SetRequest method allows injection of HTTP request to the error, it implements client.errorWithRequest.
func (e *APIError) SetRequest(request *http.Request) {
	e.request = request
}

// SetResponse method allows injection of HTTP response to the error, it implements client.errorWithResponse.
func (e *APIError) SetResponse(response *http.Response) {
	e.response = response
}
