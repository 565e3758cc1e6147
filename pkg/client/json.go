package client

import (
	jsoniter "github.com/json-iterator/go"
)

// json is used for request and response bodies, it behaves like encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
