package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/hairyhenderson/go-remotefs"
)

// ReadStream opens the file at the given path with a GET request. The
// response body is returned unread as the stream, and must be closed by the
// caller. Any failure is reported as [remotefs.ErrNotFound].
func (a *Adapter) ReadStream(ctx context.Context, name string) (remotefs.StreamResult, error) {
	body, err := a.open(ctx, "readstream", name)
	if err != nil {
		return remotefs.StreamResult{}, err
	}

	return remotefs.StreamResult{Path: name, Stream: body}, nil
}

// Read reads the whole file at the given path. Failing to read the body
// completely is also reported as [remotefs.ErrNotFound].
func (a *Adapter) Read(ctx context.Context, name string) (remotefs.ReadResult, error) {
	body, err := a.open(ctx, "read", name)
	if err != nil {
		return remotefs.ReadResult{}, err
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return remotefs.ReadResult{}, a.notFound("read", name, err)
	}

	return remotefs.ReadResult{Path: name, Contents: b}, nil
}

func (a *Adapter) open(ctx context.Context, op, name string) (io.ReadCloser, error) {
	resp, err := a.fetch(ctx, http.MethodGet, name)
	if err != nil {
		return nil, a.notFound(op, name, err)
	}

	// The response body must be closed later
	return resp.Body, nil
}
