// Package adapterfs exposes a [remotefs.Adapter] as a read-only [io/fs.FS],
// so that remote files can be consumed by any code written against the
// standard filesystem interfaces (e.g. [io/fs.ReadFile], [net/http.FS], or
// [html/template.ParseFS]).
//
// Files are opened lazily: Open makes no request, the first Read issues a GET,
// and Stat issues a HEAD. A context can be given with
// [remotefs.WithContextFS].
//
// Directories are not supported, since the underlying adapters can not list
// their contents.
package adapterfs

import (
	"context"
	"io"
	"io/fs"
	"path"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/hairyhenderson/go-remotefs/internal"
)

type adapterFS struct {
	ctx context.Context
	a   remotefs.Adapter
}

// New returns a read-only filesystem backed by the adapter a.
func New(a remotefs.Adapter) fs.FS {
	return &adapterFS{ctx: context.Background(), a: a}
}

var (
	_ fs.FS                  = (*adapterFS)(nil)
	_ fs.ReadFileFS          = (*adapterFS)(nil)
	_ fs.StatFS              = (*adapterFS)(nil)
	_ internal.WithContexter = (*adapterFS)(nil)
)

func (f *adapterFS) WithContext(ctx context.Context) fs.FS {
	if ctx == nil {
		return f
	}

	fsys := *f
	fsys.ctx = ctx

	return &fsys
}

func (f *adapterFS) Open(name string) (fs.File, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	return &adapterFile{ctx: f.ctx, a: f.a, name: name}, nil
}

func (f *adapterFS) ReadFile(name string) ([]byte, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}

	res, err := f.a.Read(f.ctx, name)
	if err != nil {
		return nil, err
	}

	return res.Contents, nil
}

func (f *adapterFS) Stat(name string) (fs.FileInfo, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	return stat(f.ctx, f.a, name)
}

func stat(ctx context.Context, a remotefs.Adapter, name string) (fs.FileInfo, error) {
	md, err := a.GetMetadata(ctx, name)
	if err != nil {
		return nil, err
	}

	return internal.FileInfo(path.Base(name), md.Size, 0o444, md.ModTime(), md.MimeType), nil
}

type adapterFile struct {
	ctx  context.Context
	a    remotefs.Adapter
	body io.ReadCloser
	name string
}

var _ fs.File = (*adapterFile)(nil)

func (f *adapterFile) Stat() (fs.FileInfo, error) {
	return stat(f.ctx, f.a, f.name)
}

func (f *adapterFile) Read(p []byte) (int, error) {
	if f.body == nil {
		res, err := f.a.ReadStream(f.ctx, f.name)
		if err != nil {
			return 0, err
		}

		f.body = res.Stream
	}

	return f.body.Read(p)
}

func (f *adapterFile) Close() error {
	if f.body == nil {
		return nil
	}

	return f.body.Close()
}
