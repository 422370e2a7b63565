package httpadapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/hairyhenderson/go-remotefs/internal"
)

const defaultMimeType = "text/plain"

// a mimeSource derives a MIME type from a response, or returns "" to defer to
// the next source
type mimeSource func(resp *http.Response, name string) string

// consulted in order, the first non-empty result wins
//
//nolint:gochecknoglobals
var mimeSources = []mimeSource{
	mimeFromHeader,
	mimeFromExtension,
	func(*http.Response, string) string { return defaultMimeType },
}

func mimeFromHeader(resp *http.Response, _ string) string {
	ct, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")

	return strings.TrimSpace(ct)
}

func mimeFromExtension(_ *http.Response, name string) string {
	return remotefs.MimeTypeByExtension(internal.Ext(name))
}

func mimeType(resp *http.Response, name string) string {
	for _, src := range mimeSources {
		if mt := src(resp, name); mt != "" {
			return mt
		}
	}

	return ""
}

// timestamp returns the Last-Modified time in seconds since the epoch, or 0
func timestamp(resp *http.Response) int64 {
	mod := resp.Header.Get("Last-Modified")
	if mod == "" {
		return 0
	}

	// best-effort - if it can't be parsed, just ignore it...
	t, err := http.ParseTime(mod)
	if err != nil {
		return 0
	}

	return t.Unix()
}

func size(resp *http.Response) int64 {
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err == nil && n >= 0 {
			return n
		}
	}

	if resp.ContentLength > 0 {
		return resp.ContentLength
	}

	return 0
}

// GetMetadata describes the file at the given path, from the headers of a HEAD
// response. Any failure is reported as [remotefs.ErrNotFound].
func (a *Adapter) GetMetadata(ctx context.Context, name string) (remotefs.Metadata, error) {
	resp, err := a.fetch(ctx, http.MethodHead, name)
	if err != nil {
		return remotefs.Metadata{}, a.notFound("getmetadata", name, err)
	}

	resp.Body.Close()

	return remotefs.Metadata{
		Path:       name,
		Type:       remotefs.TypeFile,
		Timestamp:  timestamp(resp),
		Size:       size(resp),
		Visibility: a.visibility,
		MimeType:   mimeType(resp, name),
	}, nil
}

// GetMimetype is equivalent to GetMetadata.
func (a *Adapter) GetMimetype(ctx context.Context, name string) (remotefs.Metadata, error) {
	return a.GetMetadata(ctx, name)
}

// GetSize is equivalent to GetMetadata.
func (a *Adapter) GetSize(ctx context.Context, name string) (remotefs.Metadata, error) {
	return a.GetMetadata(ctx, name)
}

// GetTimestamp is equivalent to GetMetadata.
func (a *Adapter) GetTimestamp(ctx context.Context, name string) (remotefs.Metadata, error) {
	return a.GetMetadata(ctx, name)
}
