package request

import (
	"context"
	"net/http"
)

// Sender performs the HTTP call described by the request definition.
// The returned result must be the value set by HTTPRequest.WithResult, if any.
type Sender interface {
	Send(ctx context.Context, request HTTPRequest) (rawResponse *http.Response, result any, err error)
}

// Sendable is an HTTPRequest, an APIRequest or a group of them.
type Sendable interface {
	SendOrErr(ctx context.Context) error
}

// ReqDefinitionError is a Sendable which always fails.
// It is used where a request cannot be defined, so the error is reported on send,
// together with the other errors.
type ReqDefinitionError struct {
	error
}

func NewReqDefinitionError(err error) Sendable {
	return ReqDefinitionError{error: err}
}

func (e ReqDefinitionError) SendOrErr(_ context.Context) error {
	return e
}

func (e ReqDefinitionError) Unwrap() error {
	return e.error
}
