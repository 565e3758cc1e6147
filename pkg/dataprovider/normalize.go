package dataprovider

import (
	stdjson "encoding/json"
	"fmt"
	"net/http"
)

// RawResponse is a received HTTP response with the whole body loaded.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Normalize maps the raw response to the result shape of the verb.
func Normalize(verb Verb, params Params, response RawResponse, settings Settings) (Result, error) {
	result, err := newResult(verb)
	if err != nil {
		return nil, err
	}
	if err := normalizeInto(result, verb, params, response, settings); err != nil {
		return nil, err
	}
	return result, nil
}

// normalizeInto fills the result allocated by the newResult function.
func normalizeInto(target Result, verb Verb, params Params, response RawResponse, settings Settings) error {
	if !verb.Valid() {
		return &UnsupportedVerbError{Verb: verb}
	}

	switch v := target.(type) {
	case *ListResult:
		if !verb.hasListResult() {
			break
		}
		return normalizeList(v, verb, response.Body, settings.Total)
	case *RecordResult:
		if verb != VerbGetOne && verb != VerbCreate && verb != VerbUpdate {
			break
		}
		v.Data = response.Body
		return nil
	case *DeleteResult:
		if verb != VerbDelete {
			break
		}
		p, ok := params.(DeleteParams)
		if !ok {
			return newInvalidParamsError(verb, fmt.Errorf(`unexpected params type "%T"`, params))
		}
		v.Data = DeletedRecord{ID: p.ID}
		return nil
	}
	panic(fmt.Errorf(`unexpected result type "%T" for verb "%s"`, target, verb))
}

func normalizeList(target *ListResult, verb Verb, body []byte, totalField string) error {
	if totalField == "" {
		totalField = DefaultTotalField
	}

	var envelope map[string]stdjson.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &ResponseError{Verb: verb, Err: fmt.Errorf(`%w: %s`, ErrMalformedBody, err.Error())}
	}
	if envelope == nil {
		return &ResponseError{Verb: verb, Err: fmt.Errorf(`%w: body is null`, ErrMalformedBody)}
	}

	data, found := envelope["data"]
	if !found {
		return &ResponseError{Verb: verb, Err: ErrMissingData}
	}

	metaRaw, found := envelope["meta"]
	if !found {
		return &ResponseError{Verb: verb, Err: ErrMissingMeta}
	}
	var meta map[string]stdjson.RawMessage
	if err := json.Unmarshal(metaRaw, &meta); err != nil || meta == nil {
		return &ResponseError{Verb: verb, Err: fmt.Errorf(`%w: "meta" is not an object`, ErrMalformedBody)}
	}

	total, found := meta[totalField]
	if !found {
		return &ResponseError{Verb: verb, Err: fmt.Errorf(`%w "meta.%s"`, ErrMissingTotal, totalField)}
	}

	target.Data = rawValue(data)
	target.Total = rawValue(total)
	return nil
}

// rawValue keeps a present null field as the "null" literal, the decoder returns an empty value for it.
func rawValue(v stdjson.RawMessage) stdjson.RawMessage {
	if len(v) == 0 {
		return stdjson.RawMessage("null")
	}
	return v
}
