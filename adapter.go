package remotefs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"
)

// Visibility describes whether a remote resource is assumed to require
// credentials. It is fixed per adapter, and not queried from the server.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// TypeFile is the only entry type an adapter reports.
const TypeFile = "file"

var (
	// ErrNotFound is returned (wrapped) when a resource can't be reached. No
	// distinction is made between absence and transport failure.
	ErrNotFound = fs.ErrNotExist

	// ErrUnsupported is returned by every mutating operation of a read-only
	// adapter.
	ErrUnsupported = errors.ErrUnsupported

	// ErrVisibilityImmutable is returned when asked to change an adapter's
	// visibility.
	ErrVisibilityImmutable = errors.New("visibility can not be changed")

	// ErrInvalidBaseURL is returned when an adapter can't be constructed from
	// the given base URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// Metadata describes a single remote file.
type Metadata struct {
	Path       string
	Type       string
	MimeType   string
	Visibility Visibility
	// Timestamp is the modification time, in seconds since the Unix epoch
	Timestamp int64
	// Size in bytes
	Size int64
}

// ModTime returns the timestamp as a time.Time, or the zero time when the
// timestamp is unknown.
func (m Metadata) ModTime() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}

	return time.Unix(m.Timestamp, 0).UTC()
}

// ReadResult is the fully materialized content of a file.
type ReadResult struct {
	Path     string
	Contents []byte
}

// StreamResult holds a lazily-consumed stream of a file's content. The caller
// owns the stream and must close it.
type StreamResult struct {
	Stream io.ReadCloser
	Path   string
}

// VisibilityResult pairs a path with its visibility.
type VisibilityResult struct {
	Path       string
	Visibility Visibility
}

// WriteConfig holds the hints accepted by the mutating operations.
type WriteConfig struct {
	Visibility Visibility
	MimeType   string
}

// Adapter is the filesystem capability contract. Paths are always relative to
// the adapter's root.
type Adapter interface {
	Reader
	Writer

	// ListContents enumerates the entries under dir.
	ListContents(ctx context.Context, dir string, recursive bool) ([]Metadata, error)
}

// Reader is the read-path half of [Adapter].
type Reader interface {
	// Has reports whether the file at path exists.
	Has(ctx context.Context, path string) bool
	Read(ctx context.Context, path string) (ReadResult, error)
	ReadStream(ctx context.Context, path string) (StreamResult, error)

	GetMetadata(ctx context.Context, path string) (Metadata, error)
	GetMimetype(ctx context.Context, path string) (Metadata, error)
	GetSize(ctx context.Context, path string) (Metadata, error)
	GetTimestamp(ctx context.Context, path string) (Metadata, error)

	GetVisibility(ctx context.Context, path string) (VisibilityResult, error)
	SetVisibility(ctx context.Context, path string, v Visibility) (VisibilityResult, error)
}

// Writer is the mutating half of [Adapter].
type Writer interface {
	Write(ctx context.Context, path string, contents []byte, cfg WriteConfig) (Metadata, error)
	WriteStream(ctx context.Context, path string, r io.Reader, cfg WriteConfig) (Metadata, error)
	Update(ctx context.Context, path string, contents []byte, cfg WriteConfig) (Metadata, error)
	UpdateStream(ctx context.Context, path string, r io.Reader, cfg WriteConfig) (Metadata, error)
	Rename(ctx context.Context, path, newpath string) error
	Copy(ctx context.Context, path, newpath string) error
	Delete(ctx context.Context, path string) error
	DeleteDir(ctx context.Context, dir string) error
	CreateDir(ctx context.Context, dir string, cfg WriteConfig) error
}
