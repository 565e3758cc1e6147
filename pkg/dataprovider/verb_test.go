package dataprovider_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/keboola/go-jsonapi-client/pkg/dataprovider"
)

func TestParseVerb(t *testing.T) {
	t.Parallel()

	for _, verb := range AllVerbs() {
		parsed, err := ParseVerb(verb.String())
		require.NoError(t, err)
		assert.Equal(t, verb, parsed)
		assert.True(t, parsed.Valid())
	}

	for _, str := range []string{"", "get_list", "PATCH_MANY", "UPDATE_MANY", "DELETE_MANY"} {
		_, err := ParseVerb(str)
		require.Error(t, err)
		var verbErr *UnsupportedVerbError
		require.True(t, errors.As(err, &verbErr))
		assert.Equal(t, Verb(str), verbErr.Verb)
		assert.Equal(t, `unsupported data provider verb "`+str+`"`, err.Error())
	}
}

func TestAllVerbs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Verb{VerbGetList, VerbGetOne, VerbCreate, VerbUpdate, VerbDelete, VerbGetMany}, AllVerbs())

	// Returned slice is a copy
	verbs := AllVerbs()
	verbs[0] = "FOO"
	assert.Equal(t, VerbGetList, AllVerbs()[0])
}
