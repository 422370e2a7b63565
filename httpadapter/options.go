package httpadapter

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Option configures an Adapter.
type Option interface {
	apply(*Adapter)
}

type optionFunc func(*Adapter)

func (o optionFunc) apply(a *Adapter) {
	o(a)
}

// WithClient specifies the HTTP client to send requests with. If none is
// specified, a pooled client from go-cleanhttp is used.
func WithClient(client Doer) Option {
	return optionFunc(func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	})
}

// WithLogger specifies a logger for request-level diagnostics. Failures are
// logged at debug level, since they're reported to callers as absent files.
// By default nothing is logged.
func WithLogger(log logrus.FieldLogger) Option {
	return optionFunc(func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	})
}

// WithHeader adds headers to send with every request.
func WithHeader(headers http.Header) Option {
	return optionFunc(func(a *Adapter) {
		a.headers = mergeHeaders(a.headers, headers)
	})
}

// WithRequestIDs sets a random X-Request-Id header on every request, and
// includes it in log entries.
func WithRequestIDs() Option {
	return optionFunc(func(a *Adapter) {
		a.requestIDs = true
	})
}
