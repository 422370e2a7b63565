// Package traceadapter instruments a [remotefs.Adapter] for distributed
// tracing. The OpenTelemetry API is supported.
//
// This is not itself an adapter implementation, but rather a wrapper around an
// existing adapter. As such, it does not implement [remotefs.AdapterProvider].
//
// # Usage
//
// To use this package, call [New] with a base adapter. All operations on the
// returned adapter will be instrumented, with spans named after the operation
// (e.g. "adapter.GetMetadata"). Streams returned by ReadStream are also
// instrumented, with "stream.Read" and "stream.Close" spans.
//
// In order to report traces, an OTel [trace.TracerProvider] must first be set
// up. The details of this are outside the scope of this module, but see the
// remotefs command in this repository's cmd directory for one approach.
//
// A [trace.TracerProvider] can optionally be passed to [New] using
// [WithTracerProvider].
package traceadapter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hairyhenderson/go-remotefs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type traceAdapter struct {
	a      remotefs.Adapter
	tracer trace.Tracer
}

const tracerName = "github.com/hairyhenderson/go-remotefs/traceadapter"

// New returns an adapter that instruments the given adapter, adding trace
// spans for each operation. Options can be provided to configure the
// behaviour of the instrumented adapter.
func New(a remotefs.Adapter, opts ...Option) remotefs.Adapter {
	cfg := config{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &traceAdapter{
		a:      a,
		tracer: cfg.tp.Tracer(tracerName),
	}
}

type urlAdapter interface {
	URL() string
}

var _ remotefs.Adapter = (*traceAdapter)(nil)

// URL returns the wrapped adapter's URL, if it has one.
func (t *traceAdapter) URL() string {
	if ua, ok := t.a.(urlAdapter); ok {
		return ua.URL()
	}

	return ""
}

func (t *traceAdapter) WithHeader(headers http.Header) remotefs.Adapter {
	c := *t
	c.a = remotefs.WithHeader(headers, t.a)

	return &c
}

func (t *traceAdapter) WithHTTPClient(client *http.Client) remotefs.Adapter {
	c := *t
	c.a = remotefs.WithHTTPClient(client, t.a)

	return &c
}

func (t *traceAdapter) attribs(name string, extra ...attribute.KeyValue) []attribute.KeyValue {
	kvs := []attribute.KeyValue{Path(name), Type(fmt.Sprintf("%T", t.a))}

	if u := t.URL(); u != "" {
		kvs = append(kvs, BaseURL(u))
	}

	return append(kvs, extra...)
}

func (t *traceAdapter) start(ctx context.Context, op, name string, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "adapter."+op, trace.WithAttributes(t.attribs(name, extra...)...))
}

func metadataAttribs(md remotefs.Metadata) []attribute.KeyValue {
	return []attribute.KeyValue{
		FileSize(md.Size),
		FileModTime(md.ModTime()),
		FileMimeType(md.MimeType),
		FileVisibility(string(md.Visibility)),
	}
}

func (t *traceAdapter) Has(ctx context.Context, name string) bool {
	ctx, span := t.start(ctx, "Has", name)
	defer span.End()

	exists := t.a.Has(ctx, name)

	span.SetAttributes(FileExists(exists))

	return exists
}

func (t *traceAdapter) Read(ctx context.Context, name string) (remotefs.ReadResult, error) {
	ctx, span := t.start(ctx, "Read", name)
	defer span.End()

	res, err := t.a.Read(ctx, name)
	if err != nil {
		return res, recordError(span, err)
	}

	span.SetAttributes(
		FileSize(int64(len(res.Contents))),
		FileBytesRead(len(res.Contents)),
	)

	return res, nil
}

func (t *traceAdapter) ReadStream(ctx context.Context, name string) (remotefs.StreamResult, error) {
	ctx, span := t.start(ctx, "ReadStream", name)
	defer span.End()

	res, err := t.a.ReadStream(ctx, name)
	if err != nil {
		return res, recordError(span, err)
	}

	res.Stream = &traceStream{
		rc:      res.Stream,
		ctx:     ctx,
		tracer:  t.tracer,
		attribs: t.attribs(name),
	}

	return res, nil
}

func (t *traceAdapter) metadata(ctx context.Context, op, name string,
	f func(context.Context, string) (remotefs.Metadata, error),
) (remotefs.Metadata, error) {
	ctx, span := t.start(ctx, op, name)
	defer span.End()

	md, err := f(ctx, name)
	if err == nil {
		span.SetAttributes(metadataAttribs(md)...)
	}

	return md, recordError(span, err)
}

func (t *traceAdapter) GetMetadata(ctx context.Context, name string) (remotefs.Metadata, error) {
	return t.metadata(ctx, "GetMetadata", name, t.a.GetMetadata)
}

func (t *traceAdapter) GetMimetype(ctx context.Context, name string) (remotefs.Metadata, error) {
	return t.metadata(ctx, "GetMimetype", name, t.a.GetMimetype)
}

func (t *traceAdapter) GetSize(ctx context.Context, name string) (remotefs.Metadata, error) {
	return t.metadata(ctx, "GetSize", name, t.a.GetSize)
}

func (t *traceAdapter) GetTimestamp(ctx context.Context, name string) (remotefs.Metadata, error) {
	return t.metadata(ctx, "GetTimestamp", name, t.a.GetTimestamp)
}

func (t *traceAdapter) GetVisibility(ctx context.Context, name string) (remotefs.VisibilityResult, error) {
	ctx, span := t.start(ctx, "GetVisibility", name)
	defer span.End()

	vr, err := t.a.GetVisibility(ctx, name)

	span.SetAttributes(FileVisibility(string(vr.Visibility)))

	return vr, recordError(span, err)
}

func (t *traceAdapter) SetVisibility(ctx context.Context, name string, v remotefs.Visibility) (remotefs.VisibilityResult, error) {
	ctx, span := t.start(ctx, "SetVisibility", name, FileVisibility(string(v)))
	defer span.End()

	vr, err := t.a.SetVisibility(ctx, name, v)

	return vr, recordError(span, err)
}

func (t *traceAdapter) ListContents(ctx context.Context, dir string, recursive bool) ([]remotefs.Metadata, error) {
	ctx, span := t.start(ctx, "ListContents", dir, attribute.Bool("dir.recursive", recursive))
	defer span.End()

	list, err := t.a.ListContents(ctx, dir, recursive)

	span.SetAttributes(DirEntries(len(list)))

	return list, recordError(span, err)
}

func (t *traceAdapter) Write(ctx context.Context, name string, contents []byte, cfg remotefs.WriteConfig) (remotefs.Metadata, error) {
	ctx, span := t.start(ctx, "Write", name)
	defer span.End()

	md, err := t.a.Write(ctx, name, contents, cfg)

	return md, recordError(span, err)
}

func (t *traceAdapter) WriteStream(ctx context.Context, name string, r io.Reader, cfg remotefs.WriteConfig) (remotefs.Metadata, error) {
	ctx, span := t.start(ctx, "WriteStream", name)
	defer span.End()

	md, err := t.a.WriteStream(ctx, name, r, cfg)

	return md, recordError(span, err)
}

func (t *traceAdapter) Update(ctx context.Context, name string, contents []byte, cfg remotefs.WriteConfig) (remotefs.Metadata, error) {
	ctx, span := t.start(ctx, "Update", name)
	defer span.End()

	md, err := t.a.Update(ctx, name, contents, cfg)

	return md, recordError(span, err)
}

func (t *traceAdapter) UpdateStream(ctx context.Context, name string, r io.Reader, cfg remotefs.WriteConfig) (remotefs.Metadata, error) {
	ctx, span := t.start(ctx, "UpdateStream", name)
	defer span.End()

	md, err := t.a.UpdateStream(ctx, name, r, cfg)

	return md, recordError(span, err)
}

func (t *traceAdapter) Rename(ctx context.Context, name, newpath string) error {
	ctx, span := t.start(ctx, "Rename", name, NewPath(newpath))
	defer span.End()

	return recordError(span, t.a.Rename(ctx, name, newpath))
}

func (t *traceAdapter) Copy(ctx context.Context, name, newpath string) error {
	ctx, span := t.start(ctx, "Copy", name, NewPath(newpath))
	defer span.End()

	return recordError(span, t.a.Copy(ctx, name, newpath))
}

func (t *traceAdapter) Delete(ctx context.Context, name string) error {
	ctx, span := t.start(ctx, "Delete", name)
	defer span.End()

	return recordError(span, t.a.Delete(ctx, name))
}

func (t *traceAdapter) DeleteDir(ctx context.Context, dir string) error {
	ctx, span := t.start(ctx, "DeleteDir", dir)
	defer span.End()

	return recordError(span, t.a.DeleteDir(ctx, dir))
}

func (t *traceAdapter) CreateDir(ctx context.Context, dir string, cfg remotefs.WriteConfig) error {
	ctx, span := t.start(ctx, "CreateDir", dir)
	defer span.End()

	return recordError(span, t.a.CreateDir(ctx, dir, cfg))
}

// recordError records the given error on the span, and returns it. It does not
// set the span's status to error.
func recordError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
	}

	return err
}
