package dataprovider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/keboola/go-jsonapi-client/pkg/dataprovider"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Settings{Headers: map[string]string{}, Total: "total"}, DefaultSettings())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		defaults  Settings
		overrides Settings
		expected  Settings
	}{
		{
			name:      "empty overrides",
			defaults:  DefaultSettings(),
			overrides: Settings{},
			expected:  Settings{Headers: map[string]string{}, Total: "total"},
		},
		{
			name:      "headers only",
			defaults:  DefaultSettings(),
			overrides: Settings{Headers: map[string]string{"Authorization": "Bearer abc"}},
			expected:  Settings{Headers: map[string]string{"Authorization": "Bearer abc"}, Total: "total"},
		},
		{
			name:      "total only",
			defaults:  Settings{Headers: map[string]string{"X-App": "admin"}, Total: "total"},
			overrides: Settings{Total: "count"},
			expected:  Settings{Headers: map[string]string{"X-App": "admin"}, Total: "count"},
		},
		{
			name:      "headers are merged by key",
			defaults:  Settings{Headers: map[string]string{"X-App": "admin", "Authorization": "old"}, Total: "total"},
			overrides: Settings{Headers: map[string]string{"Authorization": "new", "X-Foo": "bar"}},
			expected: Settings{
				Headers: map[string]string{"X-App": "admin", "Authorization": "new", "X-Foo": "bar"},
				Total:   "total",
			},
		},
		{
			name:      "nil default headers",
			defaults:  Settings{Total: "total"},
			overrides: Settings{Headers: map[string]string{"X-Foo": "bar"}},
			expected:  Settings{Headers: map[string]string{"X-Foo": "bar"}, Total: "total"},
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, Resolve(tc.defaults, tc.overrides), tc.name)
	}
}

func TestResolve_InputsNotModified(t *testing.T) {
	t.Parallel()

	defaults := Settings{Headers: map[string]string{"X-App": "admin"}, Total: "total"}
	overrides := Settings{Headers: map[string]string{"Authorization": "Bearer abc"}, Total: "count"}
	out := Resolve(defaults, overrides)
	out.Headers["X-Modified"] = "1"

	assert.Equal(t, Settings{Headers: map[string]string{"X-App": "admin"}, Total: "total"}, defaults)
	assert.Equal(t, Settings{Headers: map[string]string{"Authorization": "Bearer abc"}, Total: "count"}, overrides)
	assert.Equal(t, "1", out.Headers["X-Modified"])
}
