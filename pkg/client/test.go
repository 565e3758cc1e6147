package client

import (
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/keboola/go-jsonapi-client/pkg/client/trace"
)

// VerboseEnv enables dumping of all test requests and responses to stdout, if set to "true".
// The dump is not masked, it may contain tokens.
const VerboseEnv = "TEST_HTTP_CLIENT_VERBOSE"

// NewTestClient returns the Client with TestingRetry, for use in tests.
func NewTestClient() Client {
	c := New().WithRetry(TestingRetry())
	if os.Getenv(VerboseEnv) == "true" {
		c = c.AndTrace(trace.DumpTracer(os.Stdout))
	}
	return c
}

// NewMockedClient returns the test Client and its httpmock transport for registering responders.
func NewMockedClient() (Client, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	return NewTestClient().WithTransport(transport), transport
}
