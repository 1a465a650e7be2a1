package httpclient

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/bsidebar/insights/pkg/version"
)

// UserAgent is sent with every request made by clients from NewHTTPClient.
var UserAgent = fmt.Sprintf("Insights/%s (%s; %s)", version.Version, runtime.GOOS, runtime.GOARCH)

type userAgentTransport struct {
	agent string
	rt    http.RoundTripper
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r2 := req.Clone(req.Context())
	r2.Header.Set("User-Agent", u.agent)
	return u.rt.RoundTrip(r2)
}

// NewHTTPClient returns a client that identifies itself with UserAgent and
// gives up on a request after timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			agent: UserAgent,
			rt:    http.DefaultTransport,
		},
	}
}
