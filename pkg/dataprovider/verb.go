package dataprovider

// Verb is a data access operation, one of the closed set returned by AllVerbs.
type Verb string

const (
	VerbGetList Verb = "GET_LIST"
	VerbGetOne  Verb = "GET_ONE"
	VerbCreate  Verb = "CREATE"
	VerbUpdate  Verb = "UPDATE"
	VerbDelete  Verb = "DELETE"
	VerbGetMany Verb = "GET_MANY"
)

// AllVerbs returns all supported verbs.
func AllVerbs() []Verb {
	return []Verb{VerbGetList, VerbGetOne, VerbCreate, VerbUpdate, VerbDelete, VerbGetMany}
}

// ParseVerb converts a string to the Verb, an unknown value results in the UnsupportedVerbError.
func ParseVerb(s string) (Verb, error) {
	v := Verb(s)
	if !v.Valid() {
		return "", &UnsupportedVerbError{Verb: v}
	}
	return v, nil
}

func (v Verb) Valid() bool {
	switch v {
	case VerbGetList, VerbGetOne, VerbCreate, VerbUpdate, VerbDelete, VerbGetMany:
		return true
	default:
		return false
	}
}

func (v Verb) String() string {
	return string(v)
}

// hasListResult is true for verbs returning a collection with a total count.
func (v Verb) hasListResult() bool {
	return v == VerbGetList || v == VerbGetMany
}
