package elastic

import (
	"net/http"
	"strings"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
)

// securityPathPrefix marks requests whose bodies may carry passwords.
const securityPathPrefix = "/_security/"

// RedactSecurityBodies wraps l so that request bodies sent to security
// endpoints are never logged. Everything else passes through unchanged.
func RedactSecurityBodies(l elastictransport.Logger) elastictransport.Logger {
	return redactingLogger{Logger: l}
}

type redactingLogger struct {
	elastictransport.Logger
}

func (l redactingLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	if req != nil && req.URL != nil && strings.HasPrefix(req.URL.Path, securityPathPrefix) {
		// the request has already been sent; the copy only feeds the logger
		masked := *req
		masked.Body = nil
		req = &masked
	}
	return l.Logger.LogRoundTrip(req, res, err, start, dur)
}
