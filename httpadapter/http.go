package httpadapter

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/hairyhenderson/go-remotefs"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
)

// Doer sends HTTP requests. [net/http.Client] is the usual implementation. It
// must be safe for concurrent use if the Adapter is to be used concurrently.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestIDHeader is set on every request when [WithRequestIDs] is used.
const RequestIDHeader = "X-Request-Id"

// Adapter is a read-only [remotefs.Adapter] rooted at an HTTP(S) base URL. It
// holds no mutable state, and a single Adapter may be used concurrently.
type Adapter struct {
	remotefs.ReadOnly

	client     Doer
	log        logrus.FieldLogger
	headers    http.Header
	base       BaseURL
	visibility remotefs.Visibility
	requestIDs bool
}

// New returns an adapter for the HTTP (or HTTPS) endpoint rooted at base.
// Metadata requests are made with the HEAD method, and reads with GET.
//
// An error wrapping [remotefs.ErrInvalidBaseURL] is returned when base can't
// be parsed, or lacks a scheme or host.
func New(base string, opts ...Option) (*Adapter, error) {
	b, err := ParseBaseURL(base)
	if err != nil {
		return nil, err
	}

	return newAdapter(b, opts...), nil
}

// NewFromURL returns an adapter rooted at u. It is suitable for registering
// with a [remotefs.AdapterMux] (see [Provider]).
func NewFromURL(u *url.URL) (remotefs.Adapter, error) {
	b, err := baseURLFrom(u)
	if err != nil {
		return nil, err
	}

	return newAdapter(b), nil
}

func newAdapter(b BaseURL, opts ...Option) *Adapter {
	a := &Adapter{
		base:       b,
		visibility: b.Visibility(),
		headers:    http.Header{},
	}

	for _, opt := range opts {
		opt.apply(a)
	}

	if a.client == nil {
		a.client = cleanhttp.DefaultPooledClient()
	}

	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}

	return a
}

// Provider is used to register this adapter with a remotefs.AdapterMux
//
//nolint:gochecknoglobals
var Provider = remotefs.AdapterProviderFunc(NewFromURL, "http", "https")

var _ remotefs.Adapter = (*Adapter)(nil)

// BaseURL returns the normalized base URL.
func (a *Adapter) BaseURL() BaseURL {
	return a.base
}

// URL returns the base URL with any password redacted.
func (a *Adapter) URL() string {
	return a.base.Redacted()
}

// WithHeader returns a copy of the adapter which also sends the given headers
// with each request.
func (a *Adapter) WithHeader(headers http.Header) remotefs.Adapter {
	if headers == nil {
		return a
	}

	c := *a
	c.headers = mergeHeaders(a.headers, headers)

	return &c
}

// WithHTTPClient returns a copy of the adapter which uses the given client.
func (a *Adapter) WithHTTPClient(client *http.Client) remotefs.Adapter {
	if client == nil {
		return a
	}

	c := *a
	c.client = client

	return &c
}

func mergeHeaders(dst, src http.Header) http.Header {
	merged := dst.Clone()
	if merged == nil {
		merged = http.Header{}
	}

	for k, vs := range src {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}

	return merged
}

// request sends a single request for the given path. The caller must close
// the response body.
func (a *Adapter) request(ctx context.Context, method, name string) (*http.Response, error) {
	u, err := a.base.Resolve(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}

	for k, vs := range a.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if user, pass, ok := a.base.Credentials(); ok && req.Header.Get("Authorization") == "" {
		req.SetBasicAuth(user, pass)
	}

	log := a.log.WithFields(logrus.Fields{
		"method": method,
		"url":    u.Redacted(),
	})

	if a.requestIDs {
		id := uuid.NewString()
		req.Header.Set(RequestIDHeader, id)
		log = log.WithField("request_id", id)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("http request failed")

		return nil, err
	}

	log.WithField("status", resp.StatusCode).Debug("http request")

	return resp, nil
}

// fetch is like request, but unsuccessful (non-2xx) responses are closed and
// returned as a StatusError.
func (a *Adapter) fetch(ctx context.Context, method, name string) (*http.Response, error) {
	resp, err := a.request(ctx, method, name)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()

		return nil, &StatusError{Method: method, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// Has reports whether the path exists, which is only the case when a HEAD
// request responds with exactly 200 OK. Any failure is reported as false.
func (a *Adapter) Has(ctx context.Context, name string) bool {
	resp, err := a.request(ctx, http.MethodHead, name)
	if err != nil {
		return false
	}

	resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// GetVisibility returns the adapter's fixed visibility. No request is made.
func (a *Adapter) GetVisibility(_ context.Context, name string) (remotefs.VisibilityResult, error) {
	return remotefs.VisibilityResult{Path: name, Visibility: a.visibility}, nil
}

// SetVisibility succeeds only when v is the adapter's current visibility,
// since access control on the remote server can't be changed.
func (a *Adapter) SetVisibility(ctx context.Context, name string, v remotefs.Visibility) (remotefs.VisibilityResult, error) {
	if v != a.visibility {
		return remotefs.VisibilityResult{}, &fs.PathError{
			Op:   "setvisibility",
			Path: name,
			Err:  remotefs.ErrVisibilityImmutable,
		}
	}

	return a.GetVisibility(ctx, name)
}
