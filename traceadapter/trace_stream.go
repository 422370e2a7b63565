package traceadapter

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// traceStream wraps a stream returned by ReadStream, adding a span for each
// Read and Close
type traceStream struct {
	rc      io.ReadCloser
	ctx     context.Context
	tracer  trace.Tracer
	attribs []attribute.KeyValue
}

var _ io.ReadCloser = (*traceStream)(nil)

func (s *traceStream) Read(p []byte) (int, error) {
	_, span := s.tracer.Start(s.ctx, "stream.Read", trace.WithAttributes(s.attribs...))
	defer span.End()

	n, err := s.rc.Read(p)

	span.SetAttributes(FileBytesRead(n))

	// io.EOF is the expected end of a stream, not a failure
	if err == io.EOF {
		return n, err
	}

	return n, recordError(span, err)
}

func (s *traceStream) Close() error {
	_, span := s.tracer.Start(s.ctx, "stream.Close", trace.WithAttributes(s.attribs...))
	defer span.End()

	return recordError(span, s.rc.Close())
}
