package httpadapter

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/hairyhenderson/go-remotefs"
)

// BaseURL is the normalized, immutable root that all adapter paths are
// resolved against.
type BaseURL struct {
	user   *url.Userinfo
	scheme string
	host   string
	prefix string
}

// ParseBaseURL parses and normalizes raw. The scheme must be "http" or
// "https", and a host is required.
func ParseBaseURL(raw string) (BaseURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{}, fmt.Errorf("%w: %w", remotefs.ErrInvalidBaseURL, err)
	}

	return baseURLFrom(u)
}

func baseURLFrom(u *url.URL) (BaseURL, error) {
	if u == nil {
		return BaseURL{}, fmt.Errorf("%w: url must not be nil", remotefs.ErrInvalidBaseURL)
	}

	switch u.Scheme {
	case "http", "https":
	case "":
		return BaseURL{}, fmt.Errorf("%w: %q has no scheme", remotefs.ErrInvalidBaseURL, u.Redacted())
	default:
		return BaseURL{}, fmt.Errorf("%w: unsupported scheme %q", remotefs.ErrInvalidBaseURL, u.Scheme)
	}

	if u.Host == "" {
		return BaseURL{}, fmt.Errorf("%w: %q has no host", remotefs.ErrInvalidBaseURL, u.Redacted())
	}

	b := BaseURL{
		scheme: u.Scheme,
		host:   u.Host,
	}

	if u.User != nil {
		name := u.User.Username()
		if pass, ok := u.User.Password(); ok && pass != "" {
			b.user = url.UserPassword(name, pass)
		} else {
			b.user = url.User(name)
		}
	}

	if u.Path != "" && u.Path != "/" {
		if p := strings.Trim(u.Path, "/"); p != "" {
			b.prefix = p + "/"
		}
	}

	return b, nil
}

func (b BaseURL) url(withUser bool) *url.URL {
	u := &url.URL{
		Scheme: b.scheme,
		Host:   b.host,
		Path:   "/" + b.prefix,
	}

	if withUser {
		u.User = b.user
	}

	return u
}

// String returns the base URL in the form scheme://[user[:pass]@]host/[prefix/]
func (b BaseURL) String() string {
	return b.url(true).String()
}

// Redacted is like String, but with any password replaced by "xxxxx".
func (b BaseURL) Redacted() string {
	return b.url(true).Redacted()
}

func (b BaseURL) Scheme() string { return b.scheme }
func (b BaseURL) Host() string   { return b.host }

// Prefix returns the path prefix (without a leading "/", but always with a
// trailing "/"), or an empty string when the base URL is the host's root.
func (b BaseURL) Prefix() string { return b.prefix }

// Credentials returns the username and password from the base URL. The
// boolean reports whether any user info was present at all.
func (b BaseURL) Credentials() (username, password string, ok bool) {
	if b.user == nil {
		return "", "", false
	}

	password, _ = b.user.Password()

	return b.user.Username(), password, true
}

// Visibility is [remotefs.Private] when the base URL carries credentials, and
// [remotefs.Public] otherwise.
func (b BaseURL) Visibility() remotefs.Visibility {
	if b.user != nil {
		return remotefs.Private
	}

	return remotefs.Public
}

// Resolve returns the URL to request for the relative path name. Any query or
// fragment on name is kept, and the path is encoded the way an HTTP client
// would encode it (a bare "%" becomes "%25"), with valid escapes left intact.
// Any user info is omitted, and a leading "/" on name is ignored.
//
// Names that would climb out of the base prefix with ".." segments are
// rejected with an error wrapping [fs.ErrInvalid].
func (b BaseURL) Resolve(name string) (*url.URL, error) {
	rest, frag, _ := strings.Cut(name, "#")
	p, query, _ := strings.Cut(rest, "?")
	p = strings.TrimLeft(p, "/")

	u := b.url(false)
	base := u.EscapedPath()

	decoded, err := url.PathUnescape(p)
	if err != nil {
		// not a valid escaped path, so take it literally
		decoded = p
	}

	if c := path.Clean(decoded); c == ".." || strings.HasPrefix(c, "../") {
		return nil, fmt.Errorf("%w: %q is outside of the base URL", fs.ErrInvalid, name)
	}

	u.Path += decoded
	if err == nil {
		// EscapedPath ignores RawPath unless it's a valid encoding of Path
		u.RawPath = base + p
	}

	u.RawQuery = query
	u.Fragment = frag

	return u, nil
}
