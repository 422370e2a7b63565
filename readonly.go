package remotefs

import (
	"context"
	"io"
	"io/fs"
)

// ReadOnly implements the mutating operations of [Adapter] by rejecting them
// all with [ErrUnsupported]. Embed it in read-only adapters. ListContents
// always returns an empty listing, since a read-only adapter has no way to
// enumerate remote entries.
//
// None of these methods perform any I/O.
type ReadOnly struct{}

var _ Writer = ReadOnly{}

func unsupported(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: ErrUnsupported}
}

func (ReadOnly) Write(_ context.Context, path string, _ []byte, _ WriteConfig) (Metadata, error) {
	return Metadata{}, unsupported("write", path)
}

func (ReadOnly) WriteStream(_ context.Context, path string, _ io.Reader, _ WriteConfig) (Metadata, error) {
	return Metadata{}, unsupported("writestream", path)
}

func (ReadOnly) Update(_ context.Context, path string, _ []byte, _ WriteConfig) (Metadata, error) {
	return Metadata{}, unsupported("update", path)
}

func (ReadOnly) UpdateStream(_ context.Context, path string, _ io.Reader, _ WriteConfig) (Metadata, error) {
	return Metadata{}, unsupported("updatestream", path)
}

func (ReadOnly) Rename(_ context.Context, path, _ string) error {
	return unsupported("rename", path)
}

func (ReadOnly) Copy(_ context.Context, path, _ string) error {
	return unsupported("copy", path)
}

func (ReadOnly) Delete(_ context.Context, path string) error {
	return unsupported("delete", path)
}

func (ReadOnly) DeleteDir(_ context.Context, dir string) error {
	return unsupported("deletedir", dir)
}

func (ReadOnly) CreateDir(_ context.Context, dir string, _ WriteConfig) error {
	return unsupported("createdir", dir)
}

func (ReadOnly) ListContents(_ context.Context, _ string, _ bool) ([]Metadata, error) {
	return []Metadata{}, nil
}
