package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hairyhenderson/go-remotefs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Re-serve the remote tree read-only over HTTP",
		Long: `serve starts an HTTP server that answers HEAD and GET requests for any
path by fetching it from the remote tree. All other methods are rejected.

With --metrics-listen, Prometheus metrics are served at /metrics on a
separate address, so that they can't shadow a remote file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m *proxyMetrics

			servers := []*http.Server{}

			if metricsAddr != "" {
				m = newProxyMetrics()
				servers = append(servers, newMetricsServer(metricsAddr, m))
			}

			servers = append(servers, &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           newRouter(a.adapter, a.log, m),
				ReadHeaderTimeout: 10 * time.Second,
			})

			return serve(cmd.Context(), a.log, servers...)
		},
	}

	cmd.Flags().StringVar(&a.flags.listen, "listen", defaultListen, "Address to listen on")
	cmd.Flags().StringVar(&metricsAddr, "metrics-listen", "", "Address to serve Prometheus metrics on (disabled if empty)")

	return cmd
}

// serve runs the servers until ctx is done or one of them fails, and then
// shuts them all down.
func serve(ctx context.Context, log logrus.FieldLogger, servers ...*http.Server) error {
	errCh := make(chan error, len(servers))

	for _, srv := range servers {
		go func(srv *http.Server) {
			log.WithField("addr", srv.Addr).Info("listening")

			errCh <- srv.ListenAndServe()
		}(srv)
	}

	var serveErr error

	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
		}
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}

	return nil
}

// newRouter returns a handler serving the adapter's files. Only HEAD and GET
// are routed, so chi answers anything else with 405. Metrics are collected
// when m is non-nil.
func newRouter(ad remotefs.Adapter, log logrus.FieldLogger, m *proxyMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))

	if m != nil {
		r.Use(m.middleware)
	}

	r.Use(middleware.Recoverer)

	h := &fileHandler{adapter: ad, log: log}

	r.Head("/*", h.head)
	r.Get("/*", h.get)

	return r
}

func accessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

type fileHandler struct {
	adapter remotefs.Adapter
	log     logrus.FieldLogger
}

func (h *fileHandler) metadata(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "*")
	if name == "" {
		http.NotFound(w, r)

		return "", false
	}

	md, err := h.adapter.GetMetadata(r.Context(), name)
	if err != nil {
		h.log.WithError(err).WithField("path", name).Debug("not found")
		http.NotFound(w, r)

		return "", false
	}

	hdr := w.Header()
	hdr.Set("Content-Type", md.MimeType)

	if md.Size > 0 {
		hdr.Set("Content-Length", strconv.FormatInt(md.Size, 10))
	}

	if md.Timestamp > 0 {
		hdr.Set("Last-Modified", md.ModTime().Format(http.TimeFormat))
	}

	return name, true
}

func (h *fileHandler) head(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.metadata(w, r); ok {
		w.WriteHeader(http.StatusOK)
	}
}

func (h *fileHandler) get(w http.ResponseWriter, r *http.Request) {
	name, ok := h.metadata(w, r)
	if !ok {
		return
	}

	res, err := h.adapter.ReadStream(r.Context(), name)
	if err != nil {
		w.Header().Del("Content-Length")
		h.log.WithError(err).WithField("path", name).Debug("not found")
		http.NotFound(w, r)

		return
	}
	defer res.Stream.Close()

	// the length from HEAD may not match what GET returns
	w.Header().Del("Content-Length")

	// an empty file never calls Write, so the status must be sent explicitly
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, res.Stream); err != nil {
		h.log.WithError(err).WithField("path", name).Warn("copy failed")
	}
}
