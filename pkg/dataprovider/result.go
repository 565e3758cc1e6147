package dataprovider

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Result is a normalized response. The set of implementations is closed:
// *ListResult, *RecordResult and *DeleteResult.
type Result interface {
	isResult()
}

// ListResult of the GET_LIST and GET_MANY verbs.
type ListResult struct {
	// Data is the raw "data" field of the response body.
	Data stdjson.RawMessage `json:"data"`
	// Total is the raw value of the total field from the "meta" object, type and value are kept.
	Total stdjson.RawMessage `json:"total"`
}

// RecordResult of the GET_ONE, CREATE and UPDATE verbs.
type RecordResult struct {
	// Data is the response body as-is.
	Data stdjson.RawMessage
}

// DeleteResult of the DELETE verb, it is never read from the response body.
type DeleteResult struct {
	Data DeletedRecord `json:"data"`
}

type DeletedRecord struct {
	ID ID `json:"id"`
}

func (*ListResult) isResult()   {}
func (*RecordResult) isResult() {}
func (*DeleteResult) isResult() {}

// DecodeData decodes the records to the target, for example to a *[]MyRecord.
func (r *ListResult) DecodeData(target any) error {
	if err := json.Unmarshal(r.Data, target); err != nil {
		return fmt.Errorf(`cannot decode list data: %w`, err)
	}
	return nil
}

// TotalInt converts the total count to int, numbers and numeric strings are supported.
func (r *ListResult) TotalInt() (int, error) {
	if len(r.Total) == 0 {
		return 0, fmt.Errorf(`total is null`)
	}
	var v any
	if err := json.Unmarshal(r.Total, &v); err != nil {
		return 0, fmt.Errorf(`cannot decode total: %w`, err)
	}
	if v == nil {
		return 0, fmt.Errorf(`total is null`)
	}
	total, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf(`cannot convert total: %w`, err)
	}
	return total, nil
}

// Decode decodes the record body to the target.
func (r *RecordResult) Decode(target any) error {
	if err := json.Unmarshal(r.Data, target); err != nil {
		return fmt.Errorf(`cannot decode record: %w`, err)
	}
	return nil
}

// MarshalJSON returns the body as-is.
func (r RecordResult) MarshalJSON() ([]byte, error) {
	if len(r.Data) == 0 {
		return []byte("null"), nil
	}
	return r.Data, nil
}

func newResult(verb Verb) (Result, error) {
	switch verb {
	case VerbGetList, VerbGetMany:
		return &ListResult{}, nil
	case VerbGetOne, VerbCreate, VerbUpdate:
		return &RecordResult{}, nil
	case VerbDelete:
		return &DeleteResult{}, nil
	default:
		return nil, &UnsupportedVerbError{Verb: verb}
	}
}
