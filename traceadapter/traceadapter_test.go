package traceadapter

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/hairyhenderson/go-remotefs/httpadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

//nolint:gochecknoglobals
var (
	exporter = tracetest.NewInMemoryExporter()
	tp       = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
)

func attribmap(kvs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs))

	for _, attr := range kvs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}

	return m
}

// mapAdapter is a minimal in-memory adapter
type mapAdapter struct {
	remotefs.ReadOnly
	files map[string]string
}

func (m *mapAdapter) Has(_ context.Context, name string) bool {
	_, ok := m.files[name]

	return ok
}

func (m *mapAdapter) Read(_ context.Context, name string) (remotefs.ReadResult, error) {
	s, ok := m.files[name]
	if !ok {
		return remotefs.ReadResult{}, &fs.PathError{Op: "read", Path: name, Err: remotefs.ErrNotFound}
	}

	return remotefs.ReadResult{Path: name, Contents: []byte(s)}, nil
}

func (m *mapAdapter) ReadStream(_ context.Context, name string) (remotefs.StreamResult, error) {
	s, ok := m.files[name]
	if !ok {
		return remotefs.StreamResult{}, &fs.PathError{Op: "readstream", Path: name, Err: remotefs.ErrNotFound}
	}

	return remotefs.StreamResult{Path: name, Stream: io.NopCloser(strings.NewReader(s))}, nil
}

func (m *mapAdapter) GetMetadata(_ context.Context, name string) (remotefs.Metadata, error) {
	s, ok := m.files[name]
	if !ok {
		return remotefs.Metadata{}, &fs.PathError{Op: "getmetadata", Path: name, Err: remotefs.ErrNotFound}
	}

	return remotefs.Metadata{
		Path:       name,
		Type:       remotefs.TypeFile,
		MimeType:   "text/plain",
		Visibility: remotefs.Public,
		Timestamp:  1617278400,
		Size:       int64(len(s)),
	}, nil
}

func (m *mapAdapter) GetMimetype(ctx context.Context, name string) (remotefs.Metadata, error) {
	return m.GetMetadata(ctx, name)
}

func (m *mapAdapter) GetSize(ctx context.Context, name string) (remotefs.Metadata, error) {
	return m.GetMetadata(ctx, name)
}

func (m *mapAdapter) GetTimestamp(ctx context.Context, name string) (remotefs.Metadata, error) {
	return m.GetMetadata(ctx, name)
}

func (m *mapAdapter) GetVisibility(_ context.Context, name string) (remotefs.VisibilityResult, error) {
	return remotefs.VisibilityResult{Path: name, Visibility: remotefs.Public}, nil
}

func (m *mapAdapter) SetVisibility(_ context.Context, name string, v remotefs.Visibility) (remotefs.VisibilityResult, error) {
	if v != remotefs.Public {
		return remotefs.VisibilityResult{}, &fs.PathError{Op: "setvisibility", Path: name, Err: remotefs.ErrVisibilityImmutable}
	}

	return remotefs.VisibilityResult{Path: name, Visibility: v}, nil
}

type adapterWithURL struct {
	*mapAdapter
	url string
}

func (a *adapterWithURL) URL() string {
	return a.url
}

func newMapAdapter() *mapAdapter {
	return &mapAdapter{files: map[string]string{
		"hello.txt": "hello, world",
	}}
}

func TestTraceAdapter_GetMetadata(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	md, err := a.GetMetadata(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(12), md.Size)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, "adapter.GetMetadata", spans[0].Name)
	assert.Equal(t, map[string]interface{}{
		"fs.path":         "hello.txt",
		"fs.type":         "*traceadapter.mapAdapter",
		"file.size":       int64(12),
		"file.modtime":    "2021-04-01T12:00:00Z",
		"file.mimetype":   "text/plain",
		"file.visibility": "public",
	}, attribmap(spans[0].Attributes))
	assert.Empty(t, spans[0].Events)
}

func TestTraceAdapter_GetMetadata_Error(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	_, err := a.GetMetadata(ctx, "missing.txt")
	require.ErrorIs(t, err, remotefs.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, "adapter.GetMetadata", spans[0].Name)
	assert.NotContains(t, attribmap(spans[0].Attributes), "file.size")
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTraceAdapter_Projections(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	_, err := a.GetMimetype(ctx, "hello.txt")
	require.NoError(t, err)
	_, err = a.GetSize(ctx, "hello.txt")
	require.NoError(t, err)
	_, err = a.GetTimestamp(ctx, "hello.txt")
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "adapter.GetMimetype", spans[0].Name)
	assert.Equal(t, "adapter.GetSize", spans[1].Name)
	assert.Equal(t, "adapter.GetTimestamp", spans[2].Name)
}

func TestTraceAdapter_Has(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	assert.True(t, a.Has(ctx, "hello.txt"))
	assert.False(t, a.Has(ctx, "missing.txt"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "adapter.Has", spans[0].Name)
	assert.Equal(t, true, attribmap(spans[0].Attributes)["file.exists"])
	assert.Equal(t, false, attribmap(spans[1].Attributes)["file.exists"])
}

func TestTraceAdapter_Read(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	res, err := a.Read(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(res.Contents))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, "adapter.Read", spans[0].Name)
	assert.Equal(t, 12, int(attribmap(spans[0].Attributes)["file.bytes_read"].(int64)))
}

func TestTraceAdapter_Read_Error(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	_, err := a.Read(ctx, "missing.txt")
	require.ErrorIs(t, err, remotefs.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := attribmap(spans[0].Attributes)
	assert.NotContains(t, attrs, "file.size")
	assert.NotContains(t, attrs, "file.bytes_read")
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTraceAdapter_ReadStream(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	res, err := a.ReadStream(ctx, "hello.txt")
	require.NoError(t, err)

	b, err := io.ReadAll(res.Stream)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(b))

	require.NoError(t, res.Stream.Close())

	spans := exporter.GetSpans()
	require.GreaterOrEqual(t, len(spans), 3)

	assert.Equal(t, "adapter.ReadStream", spans[0].Name)
	assert.Equal(t, "stream.Read", spans[1].Name)
	assert.Equal(t, "stream.Close", spans[len(spans)-1].Name)

	// stream spans are children of the ReadStream span
	assert.Equal(t, spans[0].SpanContext.SpanID(), spans[1].Parent.SpanID())

	// reaching EOF is not recorded as an error
	for _, s := range spans {
		assert.Empty(t, s.Events, s.Name)
	}
}

func TestTraceAdapter_ReadStream_Error(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	_, err := a.ReadStream(ctx, "missing.txt")
	require.ErrorIs(t, err, remotefs.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
}

func TestTraceAdapter_URL(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(&adapterWithURL{newMapAdapter(), "https://example.com/files/"}, WithTracerProvider(tp))

	assert.True(t, a.Has(ctx, "hello.txt"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, map[string]interface{}{
		"fs.path":     "hello.txt",
		"fs.type":     "*traceadapter.adapterWithURL",
		"fs.base_url": "https://example.com/files/",
		"file.exists": true,
	}, attribmap(spans[0].Attributes))

	ua, ok := a.(interface{ URL() string })
	require.True(t, ok)
	assert.Equal(t, "https://example.com/files/", ua.URL())
}

func TestTraceAdapter_Visibility(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	vr, err := a.GetVisibility(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, remotefs.Public, vr.Visibility)

	_, err = a.SetVisibility(ctx, "hello.txt", remotefs.Private)
	require.ErrorIs(t, err, remotefs.ErrVisibilityImmutable)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "adapter.GetVisibility", spans[0].Name)
	assert.Equal(t, "adapter.SetVisibility", spans[1].Name)
	assert.Equal(t, "private", attribmap(spans[1].Attributes)["file.visibility"])
	assert.Len(t, spans[1].Events, 1)
}

func TestTraceAdapter_Unsupported(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	_, err := a.Write(ctx, "a", []byte("x"), remotefs.WriteConfig{})
	require.ErrorIs(t, err, remotefs.ErrUnsupported)
	_, err = a.WriteStream(ctx, "a", strings.NewReader("x"), remotefs.WriteConfig{})
	require.ErrorIs(t, err, remotefs.ErrUnsupported)
	_, err = a.Update(ctx, "a", []byte("x"), remotefs.WriteConfig{})
	require.ErrorIs(t, err, remotefs.ErrUnsupported)
	_, err = a.UpdateStream(ctx, "a", strings.NewReader("x"), remotefs.WriteConfig{})
	require.ErrorIs(t, err, remotefs.ErrUnsupported)
	require.ErrorIs(t, a.Rename(ctx, "a", "b"), remotefs.ErrUnsupported)
	require.ErrorIs(t, a.Copy(ctx, "a", "b"), remotefs.ErrUnsupported)
	require.ErrorIs(t, a.Delete(ctx, "a"), remotefs.ErrUnsupported)
	require.ErrorIs(t, a.DeleteDir(ctx, "d"), remotefs.ErrUnsupported)
	require.ErrorIs(t, a.CreateDir(ctx, "d", remotefs.WriteConfig{}), remotefs.ErrUnsupported)

	spans := exporter.GetSpans()
	require.Len(t, spans, 9)

	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name
		assert.Len(t, s.Events, 1, s.Name)
	}

	assert.Equal(t, []string{
		"adapter.Write", "adapter.WriteStream", "adapter.Update",
		"adapter.UpdateStream", "adapter.Rename", "adapter.Copy",
		"adapter.Delete", "adapter.DeleteDir", "adapter.CreateDir",
	}, names)
	assert.Equal(t, "b", attribmap(spans[4].Attributes)["fs.new_path"])
}

func TestTraceAdapter_ListContents(t *testing.T) {
	ctx := context.Background()

	exporter.Reset()

	a := New(newMapAdapter(), WithTracerProvider(tp))

	list, err := a.ListContents(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, list)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "adapter.ListContents", spans[0].Name)
	assert.Equal(t, int64(0), attribmap(spans[0].Attributes)["dir.entries"])
	assert.Equal(t, true, attribmap(spans[0].Attributes)["dir.recursive"])
}

func TestTraceAdapter_HTTPAdapter(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/hello.txt" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	t.Cleanup(srv.Close)

	base, err := httpadapter.New(srv.URL + "/files")
	require.NoError(t, err)

	exporter.Reset()

	a := New(base, WithTracerProvider(tp))

	md, err := a.GetMetadata(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), md.Size)

	_, err = a.GetMetadata(ctx, "nope.txt")
	require.Error(t, err)

	var se *httpadapter.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	attrs := attribmap(spans[0].Attributes)
	assert.Equal(t, srv.URL+"/files/", attrs["fs.base_url"])
	assert.Equal(t, "*httpadapter.Adapter", attrs["fs.type"])
	assert.Equal(t, "text/plain", attrs["file.mimetype"])
}

func TestTraceAdapter_WithHeader(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "abc" {
			w.WriteHeader(http.StatusForbidden)

			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	base, err := httpadapter.New(srv.URL)
	require.NoError(t, err)

	exporter.Reset()

	a := New(base, WithTracerProvider(tp))
	assert.False(t, a.Has(ctx, "x"))

	a = remotefs.WithHeader(http.Header{"X-Token": {"abc"}}, a)
	assert.True(t, a.Has(ctx, "x"))

	// still traced after rewrapping
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "adapter.Has", spans[1].Name)

	a = remotefs.WithHTTPClient(srv.Client(), a)
	assert.True(t, a.Has(ctx, "x"), "client swap must not drop the header")
}
