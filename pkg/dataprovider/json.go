package dataprovider

import (
	jsoniter "github.com/json-iterator/go"
)

// json encodes the request payloads like JSON.stringify, HTML characters are not escaped.
// Map keys are sorted, so the encoded values are stable.
var json = jsoniter.Config{ //nolint:gochecknoglobals
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()
