package dataprovider

import (
	"fmt"
	"maps"

	"dario.cat/mergo"
)

// DefaultTotalField is the name of the "meta" field with the total count of records.
const DefaultTotalField = "total"

// Settings of the data provider.
type Settings struct {
	// Headers are attached to each request.
	Headers map[string]string `json:"headers,omitempty"`
	// Total is the name of the field in the response "meta" object, which holds the total count of records.
	Total string `json:"total,omitempty"`
}

// DefaultSettings returns a new copy of the default settings.
func DefaultSettings() Settings {
	return Settings{Headers: make(map[string]string), Total: DefaultTotalField}
}

// Resolve deep merges overrides onto defaults. Inputs are not modified.
//
// Headers are merged key by key, an override value wins.
// Total is replaced only if the override is not empty.
func Resolve(defaults, overrides Settings) Settings {
	out := Settings{Headers: maps.Clone(defaults.Headers), Total: defaults.Total}
	if out.Headers == nil {
		out.Headers = make(map[string]string)
	}
	if err := mergo.Merge(&out, overrides, mergo.WithOverride); err != nil {
		// Both values have the same type, so it is not expected.
		panic(fmt.Errorf(`cannot merge settings: %w`, err))
	}
	return out
}

// WithHeader sets a header attached to each request.
func WithHeader(key, value string) Option {
	return func(c *config) {
		c.overrides.Headers = maps.Clone(c.overrides.Headers)
		if c.overrides.Headers == nil {
			c.overrides.Headers = make(map[string]string)
		}
		c.overrides.Headers[key] = value
	}
}

// WithHeaders sets multiple headers attached to each request.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) {
		for k, v := range headers {
			WithHeader(k, v)(c)
		}
	}
}

// WithTotalField sets name of the "meta" field with the total count of records.
func WithTotalField(field string) Option {
	return func(c *config) {
		c.overrides.Total = field
	}
}

// WithSettings merges the settings overrides with the previously set values.
func WithSettings(overrides Settings) Option {
	return func(c *config) {
		c.overrides = Resolve(c.overrides, overrides)
	}
}
