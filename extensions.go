package remotefs

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/hairyhenderson/go-remotefs/internal"
)

// WithContextFS injects a context into the filesystem fs, if the filesystem
// supports it (i.e. has a WithContext method).
func WithContextFS(ctx context.Context, fsys fs.FS) fs.FS {
	if cfsys, ok := fsys.(internal.WithContexter); ok {
		return cfsys.WithContext(ctx)
	}

	return fsys
}

type withHeaderer interface {
	WithHeader(headers http.Header) Adapter
}

// WithHeader adds custom HTTP headers to every request made by the adapter a,
// if the adapter supports it (i.e. has a WithHeader method). Otherwise a is
// returned unchanged.
func WithHeader(headers http.Header, a Adapter) Adapter {
	if ha, ok := a.(withHeaderer); ok {
		return ha.WithHeader(headers)
	}

	return a
}

type withHTTPClienter interface {
	WithHTTPClient(client *http.Client) Adapter
}

// WithHTTPClient overrides the HTTP client used by the adapter a, if the
// adapter supports it (i.e. has a WithHTTPClient method). Otherwise a is
// returned unchanged.
func WithHTTPClient(client *http.Client, a Adapter) Adapter {
	if ca, ok := a.(withHTTPClienter); ok {
		return ca.WithHTTPClient(client)
	}

	return a
}

type contentTypeFileInfo interface {
	fs.FileInfo

	ContentType() string
}

// ContentType returns the MIME content type for the given fs.FileInfo. If fi
// has a ContentType method, that will be used, otherwise the type will be
// looked up by the filename's extension with [MimeTypeByExtension].
func ContentType(fi fs.FileInfo) string {
	if cf, ok := fi.(contentTypeFileInfo); ok {
		return cf.ContentType()
	}

	return MimeTypeByExtension(internal.Ext(fi.Name()))
}
